package sandbox

import (
	"fmt"
	"time"
)

// Mode selects the network isolation mechanism for child processes.
type Mode string

const (
	// IsolationNone runs the child without network isolation.
	// It must be selected explicitly; the zero value is rejected.
	IsolationNone Mode = "none"
	// IsolationNamespace runs the child in a fresh network namespace
	// with no interfaces (Linux only).
	IsolationNamespace Mode = "namespace"
)

// Policy configures a Runner. Every field is mandatory; there are no
// defaults that would widen the sandbox silently.
type Policy struct {
	// Path is the only environment variable handed to the child.
	Path string
	// Timeout is the wall-clock bound for one invocation.
	Timeout time.Duration
	// MaxStdout caps the bytes captured from the child's stdout.
	MaxStdout int64
	// MaxStderr caps the bytes captured from the child's stderr.
	MaxStderr int64
	// Isolation selects the network isolation mode.
	Isolation Mode
}

// Validate checks that the policy is complete and supported on this host.
func (p Policy) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("sandbox policy: path is required")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("sandbox policy: timeout is required")
	}
	if p.MaxStdout <= 0 || p.MaxStderr <= 0 {
		return fmt.Errorf("sandbox policy: output caps are required")
	}
	switch p.Isolation {
	case IsolationNone:
	case IsolationNamespace:
		if !isolationSupported(p.Isolation) {
			return fmt.Errorf("sandbox policy: namespace isolation is not supported on this platform")
		}
	default:
		return fmt.Errorf("sandbox policy: isolation mode is required")
	}
	return nil
}
