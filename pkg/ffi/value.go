package ffi

import (
	"go-amqpheader/internal/handle"
	"go-amqpheader/internal/observability"
	"go-amqpheader/pkg/amqp"
	"go-amqpheader/pkg/models"

	"github.com/sirupsen/logrus"
)

// ValueGetHeader converts a described header value into a new header.
// On failure it writes the null handle and returns StatusConversionFailed.
// The new header shares nothing with v.
func ValueGetHeader(v ValueHandle, out *HeaderHandle) int32 {
	h, err := models.FromDescribed(*value(v))
	if err != nil {
		*out = 0
		observability.WithFields(logrus.Fields{
			"op":    "amqpvalue_get_header",
			"error": err.Error(),
		}).Debug("Value is not a message header")
		return StatusConversionFailed
	}
	*out = newHeaderHandle(h)
	return StatusOK
}

// ValueCreateHeader converts h into a new described value. The value is
// owned by the caller and released with ValueDestroy.
func ValueCreateHeader(h HeaderHandle) ValueHandle {
	return newValueHandle(header(h).ToDescribedWith(boundary.EncodePolicy))
}

// ValueDestroy releases v.
func ValueDestroy(v ValueHandle) {
	values.Remove(handle.Handle(v))
}

// ValueGetEncodedSize writes the length of the binary encoding of v.
func ValueGetEncodedSize(v ValueHandle, size *int) int32 {
	n, err := amqp.EncodedSize(*value(v))
	if err != nil {
		*size = 0
		return StatusConversionFailed
	}
	*size = n
	return StatusOK
}

// ValueEncode writes the binary encoding of v into buf.
func ValueEncode(v ValueHandle, buf []byte) int32 {
	b, err := amqp.Marshal(*value(v))
	if err != nil {
		return StatusConversionFailed
	}
	if len(buf) < len(b) {
		return StatusBufferTooSmall
	}
	copy(buf, b)
	return StatusOK
}

// ValueDecode decodes exactly one value from buf into a new value handle.
// Decode failures are recorded in ctx.
func ValueDecode(ctx CallContextHandle, buf []byte, out *ValueHandle) int32 {
	v, err := amqp.Unmarshal(buf)
	if err != nil {
		*out = 0
		callContext(ctx).fail(err)
		return StatusConversionFailed
	}
	*out = newValueHandle(v)
	return StatusOK
}
