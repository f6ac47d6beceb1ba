package engine

import (
	"fmt"
	"strings"
)

// Kind discriminates validation failures so the dead-letter path can be
// queried by failure class rather than by message text.
type Kind string

const (
	KindStructure           Kind = "StructureError"
	KindMissingField        Kind = "MissingFieldError"
	KindType                Kind = "TypeError"
	KindEmptyField          Kind = "EmptyFieldError"
	KindFormat              Kind = "FormatError"
	KindDomain              Kind = "DomainError"
	KindLength              Kind = "LengthError"
	KindPayload             Kind = "PayloadError"
	KindTimestampFormat     Kind = "TimestampFormatError"
	KindFutureTimestamp     Kind = "FutureTimestampError"
	KindStaleTimestamp      Kind = "StaleTimestampError"
	KindTransformValidation Kind = "TransformValidationError"
)

// Error is a structured validation failure. Missing is populated only for
// MissingFieldError and carries every absent field, not just the first.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Missing []string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, field, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func missingFieldsError(fields []string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Missing: fields,
		Message: fmt.Sprintf("missing required fields [%s]", strings.Join(fields, ", ")),
	}
}
