package errlvl

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	type args struct {
		err   error
		level Lvl
	}
	tests := []struct {
		name         string
		args         args
		wantSentinel error
	}{
		{
			name: "wrap error with level",
			args: args{
				err:   errors.New("test"),
				level: INFO,
			},
			wantSentinel: ErrInfo,
		},
		{
			name: "wrap joined errors",
			args: args{
				err:   errors.Join(errors.New("test1"), errors.New("test2")),
				level: WARN,
			},
			wantSentinel: ErrWarn,
		},
		{
			name: "unknown level defaults to error",
			args: args{
				err:   errors.New("test"),
				level: Lvl(42),
			},
			wantSentinel: ErrError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.args.err, tt.args.level)
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Wrap() wrong error level = %v, want %v", err, tt.wantSentinel)
			}
			if !errors.Is(err, tt.args.err) {
				t.Errorf("Wrap() original error not wrapped = %v, want %v", err, tt.args.err)
			}
		})
	}
}

func TestWrap_alreadyLeveled(t *testing.T) {
	orig := Wrap(errors.New("test"), FATAL)
	again := Wrap(orig, INFO)
	if again != orig { //nolint:errorlint
		t.Errorf("Wrap() should return already leveled error unchanged")
	}
	if Of(again) != FATAL {
		t.Errorf("Of() = %v, want FATAL", Of(again))
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Lvl
	}{
		{name: "no level", err: errors.New("plain"), want: 0},
		{name: "nil", err: nil, want: 0},
		{name: "debug", err: Wrap(errors.New("x"), DEBUG), want: DEBUG},
		{name: "error sentinel itself", err: ErrError, want: ERROR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.err); got != tt.want {
				t.Errorf("Of() = %v, want %v", got, tt.want)
			}
		})
	}
}
