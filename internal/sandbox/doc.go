// Package sandbox executes untrusted binaries under a constrained
// environment.
//
// # Security Model
//
// Template binaries are written by untrusted authors, so every invocation
// runs with:
//   - A scrubbed environment: the child sees exactly one variable, a PATH
//     restricted to system binary directories. Credentials exported in the
//     parent process can never reach the child.
//   - A wall-clock timeout. On expiry the child's whole process group is
//     killed; a sleeping or forking binary cannot hang the pipeline.
//   - Independent byte caps on captured stdout and stderr. A binary that
//     writes without bound is killed and the call fails; the partial
//     capture is discarded.
//   - Network isolation where the platform supports it (Linux network
//     namespaces). Outbound traffic is structurally impossible, not merely
//     discouraged.
//
// The executor never interprets stdout content. Parsing and validating
// what an untrusted binary printed is the caller's job.
//
// # Usage
//
//	runner, err := sandbox.NewRunner(sandbox.Policy{
//	    Path:      "/usr/local/bin:/usr/bin:/bin",
//	    Timeout:   30 * time.Second,
//	    MaxStdout: 1 << 20,
//	    MaxStderr: 64 << 10,
//	    Isolation: sandbox.DefaultIsolation(),
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := runner.Run(ctx, binaryPath, []string{"--manifest"}, nil)
package sandbox
