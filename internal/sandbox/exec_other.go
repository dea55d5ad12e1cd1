//go:build !linux && !windows

package sandbox

import (
	"os"
	"syscall"
)

// DefaultIsolation returns the strongest isolation mode available here.
// Outside Linux there is no namespace support, so runs fall back to
// IsolationNone and the run summary records that.
func DefaultIsolation() Mode {
	return IsolationNone
}

func isolationSupported(mode Mode) bool {
	return mode == IsolationNone
}

func sysProcAttr(mode Mode) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup kills the child's whole process group.
func killGroup(p *os.Process) {
	if p == nil {
		return
	}
	_ = syscall.Kill(-p.Pid, syscall.SIGKILL)
	_ = p.Kill()
}
