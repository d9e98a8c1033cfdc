package ffi

import (
	"go-amqpheader/internal/handle"
)

// CallContext carries diagnostics for one foreign caller. Header setters
// accept it without inspecting it; decoding records failures in it.
type CallContext struct {
	err error
}

func (c *CallContext) fail(err error) {
	if c != nil {
		c.err = err
	}
}

// CallContextCreate returns a new, empty call context.
func CallContextCreate() CallContextHandle {
	return CallContextHandle(contexts.Insert(&CallContext{}))
}

// CallContextDestroy releases ctx.
func CallContextDestroy(ctx CallContextHandle) {
	contexts.Remove(handle.Handle(ctx))
}

// CallContextGetError copies the last recorded error message into msg.
// It returns StatusAbsent when nothing was recorded.
func CallContextGetError(ctx CallContextHandle, msg *string) int32 {
	c := contexts.Get(handle.Handle(ctx))
	if c.err == nil {
		*msg = ""
		return StatusAbsent
	}
	*msg = c.err.Error()
	return StatusOK
}

// CopyCString writes msg and a terminating NUL into dst. A nil or short
// dst yields StatusBufferTooSmall and is left untouched.
func CopyCString(dst []byte, msg string) int32 {
	if len(dst) < len(msg)+1 {
		return StatusBufferTooSmall
	}
	n := copy(dst, msg)
	dst[n] = 0
	return StatusOK
}

// callContext resolves ctx. The null handle resolves to nil so callers
// without a context can still use the mutating operations.
func callContext(ctx CallContextHandle) *CallContext {
	if ctx == 0 {
		return nil
	}
	return contexts.Get(handle.Handle(ctx))
}
