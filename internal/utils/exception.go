package utils

import (
	"github.com/getsentry/sentry-go"
	"github.com/samgozman/fin-board/pkg/errlvl"
)

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	WithScope(callback func(scope *sentry.Scope))
}

// CaptureSentryException captures an exception under the given name instead of
// the Go error type. Without it every event shows up in Sentry as errors.*something*,
// which makes grouping by pipeline stage useless.
func CaptureSentryException(name string, hub sentryHub, err error) {
	lvl := sentryLevelOf(err)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.AddEventProcessor(func(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// NOTE: we need to change top element type in the stack.
			// e.Exception[0] is the first element in the stack, so it's the bottom one.
			e.Exception[len(e.Exception)-1].Type = name
			e.Level = lvl
			return e
		})
		hub.CaptureException(err)
	})
}

// sentryLevelOf maps the errlvl severity of an error to a Sentry level.
func sentryLevelOf(err error) sentry.Level {
	if err == nil {
		return sentry.LevelDebug
	}

	switch errlvl.Of(err) {
	case errlvl.DEBUG:
		return sentry.LevelDebug
	case errlvl.INFO:
		return sentry.LevelInfo
	case errlvl.WARN:
		return sentry.LevelWarning
	case errlvl.FATAL:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
