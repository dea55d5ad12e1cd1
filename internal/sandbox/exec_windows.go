//go:build windows

package sandbox

import (
	"os"
	"syscall"
)

// DefaultIsolation returns the strongest isolation mode available here.
// Windows has no namespace support; runs fall back to IsolationNone.
func DefaultIsolation() Mode {
	return IsolationNone
}

func isolationSupported(mode Mode) bool {
	return mode == IsolationNone
}

func sysProcAttr(mode Mode) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

// killGroup kills the child process. Process groups are not addressable
// the unix way here, so grandchildren are not covered.
func killGroup(p *os.Process) {
	if p == nil {
		return
	}
	_ = p.Kill()
}
