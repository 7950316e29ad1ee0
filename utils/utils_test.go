package utils

import (
	"reflect"
	"testing"
	"time"
)

func Test_ParseDate(t *testing.T) {
	tests := []struct {
		name       string
		dateString string
		want       time.Time
		wantErr    bool
	}{
		{
			name:       "RFC3339",
			dateString: "2023-11-13T12:58:48Z",
			want:       time.Date(2023, 11, 13, 12, 58, 48, 0, time.UTC),
			wantErr:    false,
		},
		{
			name:       "RFC3339 without Z",
			dateString: "2023-11-13T12:58:48",
			want:       time.Date(2023, 11, 13, 12, 58, 48, 0, time.UTC),
			wantErr:    false,
		},
		{
			name:       "FMP datetime with space",
			dateString: "2023-11-13 12:58:48",
			want:       time.Date(2023, 11, 13, 12, 58, 48, 0, time.UTC),
			wantErr:    false,
		},
		{
			name:       "plain date",
			dateString: "2023-11-13",
			want:       time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC),
			wantErr:    false,
		},
		{
			name:       "empty string",
			dateString: "",
			want:       time.Time{},
			wantErr:    false,
		},
		{
			name:       "garbage",
			dateString: "not-a-date",
			want:       time.Time{},
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.dateString)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDate() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_ParseMarketCap(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int64
		wantOk bool
	}{
		{name: "float", value: float64(1500000000), want: 1500000000, wantOk: true},
		{name: "int", value: 999000000, want: 999000000, wantOk: true},
		{name: "string", value: "2000000000000", want: 2000000000000, wantOk: true},
		{name: "string with commas", value: "1,500,000,000", want: 1500000000, wantOk: true},
		{name: "string float", value: "1500000000.75", want: 1500000000, wantOk: true},
		{name: "nil", value: nil, want: 0, wantOk: false},
		{name: "zero", value: float64(0), want: 0, wantOk: false},
		{name: "negative", value: float64(-5), want: 0, wantOk: false},
		{name: "empty string", value: "", want: 0, wantOk: false},
		{name: "garbage string", value: "n/a", want: 0, wantOk: false},
		{name: "unexpected type", value: []string{"x"}, want: 0, wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMarketCap(tt.value)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("ParseMarketCap() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}
