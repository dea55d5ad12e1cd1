//go:build linux

package sandbox

import (
	"os"
	"syscall"
)

// DefaultIsolation returns the strongest isolation mode available here.
func DefaultIsolation() Mode {
	return IsolationNamespace
}

func isolationSupported(mode Mode) bool {
	return true
}

// sysProcAttr places the child in its own process group and, for
// namespace isolation, in fresh user and network namespaces. The new
// network namespace has no interfaces, so the child cannot reach the
// network at all. The user namespace maps the current user to root
// inside, which is what allows creating the network namespace without
// elevated privileges.
func sysProcAttr(mode Mode) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setpgid: true}
	if mode == IsolationNamespace {
		attr.Cloneflags = syscall.CLONE_NEWUSER | syscall.CLONE_NEWNET
		attr.UidMappings = []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getuid(), Size: 1},
		}
		attr.GidMappings = []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getgid(), Size: 1},
		}
		attr.GidMappingsEnableSetgroups = false
	}
	return attr
}

// killGroup kills the child's whole process group.
func killGroup(p *os.Process) {
	if p == nil {
		return
	}
	// Negative pid addresses the process group.
	_ = syscall.Kill(-p.Pid, syscall.SIGKILL)
	_ = p.Kill()
}
