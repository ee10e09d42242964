package entities

import "errors"

// ErrorKind classifies expected failures so the transport layer can map
// them to a status code without string matching.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindValidation
	KindConflict
)

// DomainError is a structured, expected failure. Anything that is not a
// DomainError is treated as unexpected by the callers.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NotFound(message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

func Invalid(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

func Conflict(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of a DomainError anywhere in err's chain, or
// zero when the error is unexpected.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
