package gamenet

import "errors"

var (
	// ErrInvalidTag is returned by NewClient for an empty tag.
	ErrInvalidTag = errors.New("gamenet: tag must not be empty")
	// ErrInvalidHost is returned by Client.Connect for an empty host.
	ErrInvalidHost = errors.New("gamenet: host must not be empty")
)
