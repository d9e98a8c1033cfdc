// Package ffi exposes header and value objects through opaque handles for
// callers outside the Go heap.
//
// Ownership:
//   - HeaderCreate, ValueGetHeader, ValueCreateHeader, ValueDecode and
//     CallContextCreate hand an owning handle to the caller.
//   - Getters and setters borrow the handle; they never take ownership.
//   - HeaderDestroy, ValueDestroy and CallContextDestroy consume the handle.
//
// Using a destroyed or null handle, destroying twice, or mutating a handle
// while another goroutine reads it are caller contract violations. With
// handle checks enabled (AMQPHEADER_CHECK_HANDLES, on by default) they panic
// with a descriptive message; otherwise behaviour is undefined.
//
// Every operation returns a status code: StatusOK (0) on success, 1 for an
// absent optional field or a failed conversion, 2 for an undersized buffer.
package ffi
