package errorutil

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Kind tags an error with one of the three failure families the core
// exposes to callers.
type Kind string

const (
	// KindValidation covers bad caller input, uniqueness conflicts and
	// lookup misses. Recoverable by correcting the request.
	KindValidation Kind = "VALIDATION"
	// KindAuth covers credential or session mismatches. The message is
	// deliberately uninformative to avoid enumeration leaks.
	KindAuth Kind = "AUTH"
	// KindDatabase covers store, hashing and signing infrastructure
	// faults. Not retried beyond the startup connection loop.
	KindDatabase Kind = "DATABASE"
)

// Error is the tagged error crossing the core's boundary. Callers
// branch on Kind rather than on concrete types.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation builds a validation-kind error.
func NewValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewAuth builds an auth-kind error.
func NewAuth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// NewDatabase wraps an infrastructure failure.
func NewDatabase(message string, err error) error {
	return &Error{Kind: KindDatabase, Message: message, Err: err}
}

// KindOf extracts the kind, or "" for untagged errors.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsDatabase(err error) bool   { return KindOf(err) == KindDatabase }

// Classify normalizes an error at an operation boundary. Errors
// already carrying a kind pass through unchanged; driver lookup misses
// become validation errors with the given message; everything else is
// an infrastructure fault.
func Classify(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NewValidation(notFoundMessage)
	}
	if mongo.IsDuplicateKeyError(err) {
		return NewValidation("Email already exists")
	}
	return NewDatabase("storage operation failed", err)
}
