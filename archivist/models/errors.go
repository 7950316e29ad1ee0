package models

import "errors"

var (
	ErrJobEmpty         = errors.New("job is empty")
	ErrJobTooLong       = errors.New("job is too long")
	ErrChannelTooLong   = errors.New("channel is too long")
	ErrPubIDTooLong     = errors.New("publication_id is too long")
	ErrPublishedAtEmpty = errors.New("published_at is empty")
)
