// Package doctor checks that the tools a provisioning run needs are present.
package doctor

// CheckStatus represents the status of a dependency check.
type CheckStatus int

const (
	// StatusOK indicates the dependency is installed and working.
	StatusOK CheckStatus = iota
	// StatusMissing indicates the dependency is not installed.
	StatusMissing
	// StatusError indicates an error occurred during the check.
	StatusError
	// StatusWarning indicates the dependency has issues but may work.
	StatusWarning
)

// String returns the string representation of the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusError:
		return "error"
	case StatusWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Check represents a single dependency check result.
type Check struct {
	ID          string      // Unique identifier, e.g., "flatpak", "gpg"
	Name        string      // Display name
	Description string      // What this tool does
	Status      CheckStatus // Current status
	Message     string      // Status message (version info, error, etc.)
	FixCommand  *FixCommand // How to fix if missing (nil if not fixable)
}

// FixCommand describes how to fix a missing dependency.
type FixCommand struct {
	Description string   // Human-readable description of what the fix does
	Command     string   // Executable to run
	Args        []string // Its arguments
	Sudo        bool     // Whether the command requires root
}

// String returns the fix as a shell command line.
func (f *FixCommand) String() string {
	line := f.Command
	for _, a := range f.Args {
		line += " " + a
	}
	if f.Sudo {
		return "sudo " + line
	}
	return line
}

// CheckGroup represents a group of related dependency checks.
type CheckGroup struct {
	ID          string  // Unique identifier, e.g., "apt", "flatpak"
	Name        string  // Display name
	Description string  // What this group is for
	Checks      []Check // Individual checks in this group
}

// GroupID constants for check groups.
const (
	GroupSystem       = "system"
	GroupRepositories = "repositories"
	GroupFlatpak      = "flatpak"
	GroupSnap         = "snap"
	GroupShell        = "shell"
)

// CheckID constants for individual checks.
const (
	IDOSRelease        = "os-release"
	IDAptGet           = "apt-get"
	IDDpkgQuery        = "dpkg-query"
	IDAddAptRepository = "add-apt-repository"
	IDGpg              = "gpg"
	IDFlatpak          = "flatpak"
	IDFlathub          = "flatpak-remote"
	IDSnap             = "snap"
	IDEditor           = "editor"
	IDFzf              = "fzf"
)
