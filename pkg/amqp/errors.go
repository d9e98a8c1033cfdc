package amqp

import "errors"

var (
	ErrTruncated          = errors.New("amqp: truncated data")
	ErrInvalidConstructor = errors.New("amqp: invalid constructor")
	ErrInvalidLength      = errors.New("amqp: invalid length")
	ErrTrailingBytes      = errors.New("amqp: trailing bytes after value")
	ErrInvalidBool        = errors.New("amqp: invalid boolean value")
	ErrOddMapCount        = errors.New("amqp: map has odd element count")
	ErrNestingTooDeep     = errors.New("amqp: nesting too deep")
)
