package models

import (
	"errors"
	"fmt"

	"go-amqpheader/pkg/amqp"
)

var (
	ErrNotDescribed        = errors.New("models: value is not a described type")
	ErrWrongDescriptor     = errors.New("models: wrong descriptor")
	ErrWrongPayloadShape   = errors.New("models: described payload is not a list")
	ErrWrongFieldType      = errors.New("models: wrong field type")
	ErrUnknownEncodePolicy = errors.New("models: unknown encode policy")
)

// FieldError reports a header field whose element had an unexpected kind.
type FieldError struct {
	Field string
	Kind  amqp.Kind
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("models: header field %s: unexpected %s", e.Field, e.Kind)
}

func (e *FieldError) Unwrap() error {
	return ErrWrongFieldType
}

// IsConversionError reports whether err came from converting a generic
// value into a header.
func IsConversionError(err error) bool {
	return errors.Is(err, ErrNotDescribed) ||
		errors.Is(err, ErrWrongDescriptor) ||
		errors.Is(err, ErrWrongPayloadShape) ||
		errors.Is(err, ErrWrongFieldType)
}
