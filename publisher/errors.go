package publisher

import (
	"errors"

	"github.com/samgozman/fin-board/pkg/errlvl"
)

type publisherError error

var (
	// ErrMissingWebhookURL means the webhook URL env is not set. There is no
	// point in running without a destination, so this one is fatal.
	ErrMissingWebhookURL publisherError = errors.New("webhook url is empty")
	errRequestCreation   publisherError = errors.New("failed to create webhook request")
	errRequestFailed     publisherError = errors.New("webhook request failed")
	errBadStatus         publisherError = errors.New("webhook returned non-2xx status")
	errMultipartEncoding publisherError = errors.New("failed to encode multipart body")
)

// newError creates a wrapped error instance with the given errors.
func newError(lvl errlvl.Lvl, genericErr publisherError, err error) error {
	if err != nil {
		return errlvl.Wrap(errors.Join(genericErr, err), lvl)
	}
	return errlvl.Wrap(genericErr, lvl)
}
