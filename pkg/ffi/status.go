package ffi

// Status codes returned across the boundary.
const (
	StatusOK int32 = 0
	// StatusAbsent reports an optional field that holds no value. It is
	// not a failure.
	StatusAbsent int32 = 1
	// StatusConversionFailed reports a value that could not be converted
	// or decoded. The output handle is null.
	StatusConversionFailed int32 = 1
	// StatusBufferTooSmall reports an output buffer shorter than the
	// encoded value.
	StatusBufferTooSmall int32 = 2
)
