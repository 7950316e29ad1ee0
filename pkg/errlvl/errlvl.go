// Package errlvl tags errors with a severity level so that the reporting
// layer can decide how loud to be about them.
package errlvl

import (
	"errors"
	"fmt"
)

// Lvl represents the severity of an error in the application.
type Lvl uint8

const (
	DEBUG Lvl = iota + 1
	INFO
	WARN
	ERROR
	FATAL
)

var (
	ErrDebug = errors.New("[DEBUG]") // ErrDebug marks errors of DEBUG severity.
	ErrInfo  = errors.New("[INFO]")  // ErrInfo marks errors of INFO severity.
	ErrWarn  = errors.New("[WARN]")  // ErrWarn marks errors of WARN severity.
	ErrError = errors.New("[ERROR]") // ErrError marks errors of ERROR severity.
	ErrFatal = errors.New("[FATAL]") // ErrFatal marks errors of FATAL severity.
)

var sentinels = map[Lvl]error{
	DEBUG: ErrDebug,
	INFO:  ErrInfo,
	WARN:  ErrWarn,
	ERROR: ErrError,
	FATAL: ErrFatal,
}

// Wrap tags the given error with the given severity level.
// An error that already carries a level is returned unchanged.
func Wrap(err error, level Lvl) error {
	if Of(err) != 0 {
		return err
	}

	s, ok := sentinels[level]
	if !ok {
		s = ErrError
	}
	return fmt.Errorf("%w %w", s, err)
}

// Of returns the severity level carried by err, or 0 if it has none.
func Of(err error) Lvl {
	for lvl, s := range sentinels {
		if errors.Is(err, s) {
			return lvl
		}
	}
	return 0
}
