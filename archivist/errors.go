package archivist

import (
	"errors"

	"github.com/samgozman/fin-board/pkg/errlvl"
)

// archivistError is a service-level error type.
type archivistError error

var (
	errFailedMigration  archivistError = errors.New("failed to migrate schema")
	errFailedConnection archivistError = errors.New("failed to connect to database")
)

// newError creates a wrapped error instance with the given errors.
// The archive is a side channel, losing it should never kill a run.
func newError(genericErr archivistError, err error) error {
	if err != nil {
		return errlvl.Wrap(errors.Join(genericErr, err), errlvl.WARN)
	}
	return errlvl.Wrap(genericErr, errlvl.WARN)
}
