package main

import (
	"github.com/getsentry/sentry-go"
)

// fatalHub returns a cloned sentry hub scoped to fatal level. Used for
// startup and scheduling failures that leave the app unable to run.
func fatalHub() *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
	})
	return hub
}

// captureSchedulingError reports a job scheduling failure on the given hub.
func captureSchedulingError(hub *sentry.Hub, job string, err error) {
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "scheduler",
		Message:  "Error scheduling job " + job,
		Level:    sentry.LevelFatal,
	}, nil)
	hub.CaptureException(err)
}
