// Package common defines sentinel errors shared by the pipeline stages.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Queue errors.
	ErrQueueUnavailable = errors.New("queue unavailable")
	ErrQueueNotListed   = errors.New("queue not listed")

	// Input errors. Messages failing with these are logged and dropped.
	ErrUnparsableMessage = errors.New("unparsable message")
	ErrInvalidMessage    = errors.New("invalid message")

	// Data-value error raised while preparing a row (non-numeric app_version).
	ErrInvalidAppVersion = errors.New("invalid app version")

	// Database errors (driver, constraint, connection, transaction).
	ErrDatabase = errors.New("database error")

	// Cipher errors.
	ErrKeyDerivation     = errors.New("key derivation failed")
	ErrNullField         = errors.New("field is null")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid config")
)
