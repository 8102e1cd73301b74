package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateKey indicates a unique constraint rejected the write.
	ErrDuplicateKey = errors.New("repository: duplicate key")
	// ErrNotAcknowledged indicates the storage layer did not confirm a write.
	ErrNotAcknowledged = errors.New("repository: write not acknowledged")
)
