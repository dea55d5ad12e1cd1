package sandbox

import "time"

// Result holds the bounded output of one invocation.
// It is owned exclusively by the call site that produced it.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	// Truncated is set when a stream hit its cap. Such a run is also
	// reported as ErrOutputTooLarge; the capped capture is kept only
	// for the run log.
	Truncated bool
	// Isolation records the mode that was actually applied, so callers
	// can verify the no-network guarantee held for this invocation.
	Isolation Mode
}
