package pipeline

// notReadyError signals that no runtime session is open yet.
type notReadyError struct{ model string }

func (e notReadyError) Error() string { return "pipeline not ready: " + e.model }

// IsNotReady reports whether err indicates the pipeline has no live session.
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// runtimeUnavailableError signals that the diffusion runtime could not be
// reached or answered with a non-success status.
type runtimeUnavailableError struct{ msg string }

func (e runtimeUnavailableError) Error() string { return e.msg }

// ErrRuntimeUnavailable constructs a runtimeUnavailableError.
func ErrRuntimeUnavailable(msg string) error { return runtimeUnavailableError{msg: msg} }

// IsRuntimeUnavailable reports whether err indicates a missing/failed runtime.
func IsRuntimeUnavailable(err error) bool {
	_, ok := err.(runtimeUnavailableError)
	return ok
}
