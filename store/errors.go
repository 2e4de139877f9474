package store

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means no document matched the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable means the backend did not answer in time. Safe to retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// ConflictError is a unique-index violation naming the colliding field.
type ConflictError struct {
	Param string
}

func (e *ConflictError) Error() string {
	return e.Param + " already registered"
}

// wrapErr maps driver errors onto the store error set. Duplicate-key errors
// get the offending field sniffed out of the index name.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return ErrUnavailable
	}
	if mongo.IsDuplicateKeyError(err) {
		return &ConflictError{Param: duplicateParam(err)}
	}
	return err
}

func duplicateParam(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "username"):
		return "username"
	case strings.Contains(msg, "author_receiver"):
		return "receiver"
	}
	return "unknown"
}
