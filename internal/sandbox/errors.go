package sandbox

import "errors"

var (
	// ErrExecutionTimeout marks an invocation that exceeded its
	// wall-clock bound. The process group was killed.
	ErrExecutionTimeout = errors.New("execution timeout")

	// ErrOutputTooLarge marks an invocation whose stdout or stderr
	// exceeded its byte cap. The capture is discarded and the process
	// group killed.
	ErrOutputTooLarge = errors.New("output too large")

	// ErrExecutionFailed marks a non-zero exit status. The error text
	// carries a bounded stderr excerpt for diagnostics.
	ErrExecutionFailed = errors.New("execution failed")
)
