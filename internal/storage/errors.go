package storage

import "errors"

var (
	// ErrEmptyLog is returned when the log container is absent or holds no entries
	ErrEmptyLog = errors.New("log container is empty or missing")

	// ErrFormat is returned when the log container is not a well-formed entry sequence
	ErrFormat = errors.New("log container is malformed")

	// ErrInvalidKey is returned when an encryption key is not exactly 32 bytes
	ErrInvalidKey = errors.New("encryption key must be exactly 32 bytes")

	// ErrDecryption is returned when an envelope was not produced with the
	// configured key or is truncated/corrupted
	ErrDecryption = errors.New("failed to decrypt log entry")

	// ErrUnsupported is returned when stored logs are read on a backend that
	// does not support retrieval
	ErrUnsupported = errors.New("stored-log reads are only supported by the text backend")
)
