package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrInvalidLimit = errors.New("invalid sessions limit")
	ErrClosed       = errors.New("store closed")
)
