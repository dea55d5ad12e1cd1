// Package platform detects the host platform and maps it onto the release
// asset naming scheme used by template repositories.
//
// Extraction must run the same binary it indexes, so the pipeline selects
// the release asset matching the host's OS and architecture. The package
// uses runtime for OS/arch and gopsutil for Linux distribution details,
// which feed the run summary diagnostics.
package platform

import "context"

// Linux distribution family constants, normalized from gopsutil output.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin"
	Arch     string // "amd64", "arm64" (normalized)
	ArchRaw  string // original GOARCH value
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// String renders the platform as the os-arch pair used in asset names.
func (i *Info) String() string {
	return i.OS + "-" + i.Arch
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
