//go:build cgo

// Command libamqpheader builds the header boundary as a C shared library:
//
//	go build -buildmode=c-shared -o libamqpheader.so ./cmd/libamqpheader
//
// Handles cross the boundary as uintptr_t. Zero is the null handle.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"go-amqpheader/pkg/ffi"
)

func main() {}

//export header_create
func header_create() C.uintptr_t {
	return C.uintptr_t(ffi.HeaderCreate())
}

//export header_destroy
func header_destroy(h C.uintptr_t) {
	ffi.HeaderDestroy(ffi.HeaderHandle(h))
}

//export header_get_durable
func header_get_durable(h C.uintptr_t, out *C.bool) C.int32_t {
	var v bool
	status := ffi.HeaderGetDurable(ffi.HeaderHandle(h), &v)
	*out = C.bool(v)
	return C.int32_t(status)
}

//export header_get_priority
func header_get_priority(h C.uintptr_t, out *C.uint8_t) C.int32_t {
	var v uint8
	status := ffi.HeaderGetPriority(ffi.HeaderHandle(h), &v)
	*out = C.uint8_t(v)
	return C.int32_t(status)
}

//export header_get_ttl
func header_get_ttl(h C.uintptr_t, out *C.uint64_t) C.int32_t {
	var v uint64
	status := ffi.HeaderGetTTL(ffi.HeaderHandle(h), &v)
	*out = C.uint64_t(v)
	return C.int32_t(status)
}

//export header_get_first_acquirer
func header_get_first_acquirer(h C.uintptr_t, out *C.bool) C.int32_t {
	var v bool
	status := ffi.HeaderGetFirstAcquirer(ffi.HeaderHandle(h), &v)
	*out = C.bool(v)
	return C.int32_t(status)
}

//export header_get_delivery_count
func header_get_delivery_count(h C.uintptr_t, out *C.uint32_t) C.int32_t {
	var v uint32
	status := ffi.HeaderGetDeliveryCount(ffi.HeaderHandle(h), &v)
	*out = C.uint32_t(v)
	return C.int32_t(status)
}

//export header_set_durable
func header_set_durable(ctx, h C.uintptr_t, v C.bool) C.int32_t {
	return C.int32_t(ffi.HeaderSetDurable(ffi.CallContextHandle(ctx), ffi.HeaderHandle(h), bool(v)))
}

//export header_set_priority
func header_set_priority(ctx, h C.uintptr_t, v C.uint8_t) C.int32_t {
	return C.int32_t(ffi.HeaderSetPriority(ffi.CallContextHandle(ctx), ffi.HeaderHandle(h), uint8(v)))
}

//export header_set_ttl
func header_set_ttl(ctx, h C.uintptr_t, v C.uint64_t) C.int32_t {
	return C.int32_t(ffi.HeaderSetTTL(ffi.CallContextHandle(ctx), ffi.HeaderHandle(h), uint64(v)))
}

//export header_set_first_acquirer
func header_set_first_acquirer(ctx, h C.uintptr_t, v C.bool) C.int32_t {
	return C.int32_t(ffi.HeaderSetFirstAcquirer(ffi.CallContextHandle(ctx), ffi.HeaderHandle(h), bool(v)))
}

//export header_set_delivery_count
func header_set_delivery_count(ctx, h C.uintptr_t, v C.uint32_t) C.int32_t {
	return C.int32_t(ffi.HeaderSetDeliveryCount(ffi.CallContextHandle(ctx), ffi.HeaderHandle(h), uint32(v)))
}

//export amqpvalue_get_header
func amqpvalue_get_header(v C.uintptr_t, out *C.uintptr_t) C.int32_t {
	var h ffi.HeaderHandle
	status := ffi.ValueGetHeader(ffi.ValueHandle(v), &h)
	*out = C.uintptr_t(h)
	return C.int32_t(status)
}

//export amqpvalue_create_header
func amqpvalue_create_header(h C.uintptr_t) C.uintptr_t {
	return C.uintptr_t(ffi.ValueCreateHeader(ffi.HeaderHandle(h)))
}

//export amqpvalue_destroy
func amqpvalue_destroy(v C.uintptr_t) {
	ffi.ValueDestroy(ffi.ValueHandle(v))
}

//export amqpvalue_get_encoded_size
func amqpvalue_get_encoded_size(v C.uintptr_t, out *C.size_t) C.int32_t {
	var n int
	status := ffi.ValueGetEncodedSize(ffi.ValueHandle(v), &n)
	*out = C.size_t(n)
	return C.int32_t(status)
}

//export amqpvalue_encode
func amqpvalue_encode(v C.uintptr_t, buf *C.uint8_t, size C.size_t) C.int32_t {
	return C.int32_t(ffi.ValueEncode(ffi.ValueHandle(v), bytesOf(buf, size)))
}

//export amqpvalue_decode
func amqpvalue_decode(ctx C.uintptr_t, buf *C.uint8_t, size C.size_t, out *C.uintptr_t) C.int32_t {
	var v ffi.ValueHandle
	status := ffi.ValueDecode(ffi.CallContextHandle(ctx), bytesOf(buf, size), &v)
	*out = C.uintptr_t(v)
	return C.int32_t(status)
}

//export call_context_create
func call_context_create() C.uintptr_t {
	return C.uintptr_t(ffi.CallContextCreate())
}

//export call_context_destroy
func call_context_destroy(ctx C.uintptr_t) {
	ffi.CallContextDestroy(ffi.CallContextHandle(ctx))
}

// call_context_get_error copies the last error as a NUL-terminated string
// into buf. needed receives the buffer size the message requires.
//
//export call_context_get_error
func call_context_get_error(ctx C.uintptr_t, buf *C.char, size C.size_t, needed *C.size_t) C.int32_t {
	var msg string
	status := ffi.CallContextGetError(ffi.CallContextHandle(ctx), &msg)
	if needed != nil {
		*needed = C.size_t(len(msg) + 1)
	}
	if status != ffi.StatusOK {
		return C.int32_t(status)
	}
	return C.int32_t(ffi.CopyCString(bytesOf((*C.uint8_t)(unsafe.Pointer(buf)), size), msg))
}

func bytesOf(buf *C.uint8_t, size C.size_t) []byte {
	if buf == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size))
}
