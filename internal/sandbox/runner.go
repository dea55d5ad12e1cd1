package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// stderrExcerptLen bounds the stderr excerpt embedded in error messages.
const stderrExcerptLen = 512

// Observer is an instrumentation hook invoked once per process spawn,
// before the child starts. Tests use it to prove that unverified
// artifacts are never executed.
type Observer func(bin string)

// Runner executes binaries under a fixed Policy.
type Runner struct {
	policy   Policy
	observer Observer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObserver installs a spawn observer.
func WithObserver(obs Observer) RunnerOption {
	return func(r *Runner) { r.observer = obs }
}

// NewRunner creates a Runner after validating the policy.
func NewRunner(policy Policy, opts ...RunnerOption) (*Runner, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{policy: policy}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Policy returns the runner's policy.
func (r *Runner) Policy() Policy {
	return r.policy
}

// Run executes bin with args and optional piped stdin, returning a
// bounded Result or a typed error. The child's environment is exactly
// PATH=<policy path>; nothing else is inherited.
func (r *Runner) Run(ctx context.Context, bin string, args []string, stdin []byte) (*Result, error) {
	resolved, err := r.resolve(bin)
	if err != nil {
		return nil, err
	}

	if r.observer != nil {
		r.observer(resolved)
	}

	ctx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
	defer cancel()

	cmd := exec.Command(resolved, args...)
	cmd.Env = []string{"PATH=" + r.policy.Path}
	cmd.SysProcAttr = sysProcAttr(r.policy.Isolation)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	// One kill covers timeout and over-cap; the whole process group dies
	// so grandchildren cannot outlive the invocation.
	var killOnce sync.Once
	kill := func() {
		killOnce.Do(func() { killGroup(cmd.Process) })
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			kill()
		case <-finished:
		}
	}()

	stdout := &boundedCapture{max: r.policy.MaxStdout, overCap: kill}
	stderr := &boundedCapture{max: r.policy.MaxStderr, overCap: kill}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdout.readFrom(stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		stderr.readFrom(stderrPipe)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	close(finished)
	elapsed := time.Since(start)

	base := filepath.Base(resolved)
	switch {
	case stdout.over || stderr.over:
		// The capped capture travels back flagged as truncated, for the
		// run log only; the error still classifies the run as a failure.
		res := &Result{
			Stdout:    stdout.data,
			Stderr:    stderr.data,
			ExitCode:  -1,
			Duration:  elapsed,
			Truncated: true,
			Isolation: r.policy.Isolation,
		}
		return res, fmt.Errorf("%s: captured output exceeded cap after %s%s: %w",
			base, elapsed.Round(time.Millisecond), excerpt(stderr.data), ErrOutputTooLarge)

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%s: no result within %s: %w", base, r.policy.Timeout, ErrExecutionTimeout)

	case ctx.Err() != nil:
		// The parent context was canceled; report the cancellation rather
		// than the kill-induced exit status.
		return nil, fmt.Errorf("%s: run canceled after %s: %w", base, elapsed.Round(time.Millisecond), ctx.Err())

	case waitErr != nil:
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, fmt.Errorf("%s: exit status %d%s: %w", base, exitCode, excerpt(stderr.data), ErrExecutionFailed)
	}

	return &Result{
		Stdout:    stdout.data,
		Stderr:    stderr.data,
		ExitCode:  0,
		Duration:  elapsed,
		Isolation: r.policy.Isolation,
	}, nil
}

// resolve locates bin against the policy PATH. The process's own PATH is
// deliberately not consulted: the sandbox decides what is reachable.
func (r *Runner) resolve(bin string) (string, error) {
	if strings.ContainsRune(bin, os.PathSeparator) {
		return bin, nil
	}
	for _, dir := range filepath.SplitList(r.policy.Path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, bin)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: not found in sandbox path", bin)
}

// boundedCapture reads a stream up to max bytes. One byte past the cap
// flips over, triggers overCap, and stops reading; the killed child
// closes the pipe shortly after.
type boundedCapture struct {
	max     int64
	overCap func()
	data    []byte
	over    bool
}

func (b *boundedCapture) readFrom(r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.data = append(b.data, buf[:n]...)
			if int64(len(b.data)) > b.max {
				b.data = b.data[:b.max]
				b.over = true
				b.overCap()
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// excerpt formats a bounded stderr excerpt for inclusion in error text.
func excerpt(stderr []byte) string {
	trimmed := strings.TrimSpace(string(stderr))
	if trimmed == "" {
		return ""
	}
	if len(trimmed) > stderrExcerptLen {
		trimmed = trimmed[:stderrExcerptLen] + "..."
	}
	return ": " + trimmed
}
