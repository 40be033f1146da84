// Package manifest describes what a provisioning run installs: repositories,
// downloaded .deb files, and packages from apt, Flatpak and Snap.
package manifest

import "errors"

// Version is the current manifest schema version.
const Version = "1"

// ErrEmpty is returned when a manifest declares nothing to provision.
var ErrEmpty = errors.New("manifest declares no packages or downloads")

// Source identifies the package manager that owns a package.
type Source string

const (
	SourceApt     Source = "apt"
	SourceFlatpak Source = "flatpak"
	SourceSnap    Source = "snap"
)

// Sources lists every supported source in the order a run processes them.
var Sources = []Source{SourceApt, SourceFlatpak, SourceSnap}

// Valid reports whether s is a supported source.
func (s Source) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

// Package is one installable package.
type Package struct {
	// Name is the exact package (apt, snap) or application ID (flatpak).
	Name string `yaml:"name" toml:"name"`

	// Version pins an apt version (installed as name=version). Optional.
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`

	// Source is the package manager; empty means apt.
	Source Source `yaml:"source,omitempty" toml:"source,omitempty"`

	// Remote is the flatpak remote to install from. Defaults to flathub.
	Remote string `yaml:"remote,omitempty" toml:"remote,omitempty"`

	// Classic installs a snap with classic confinement.
	Classic bool `yaml:"classic,omitempty" toml:"classic,omitempty"`

	// Description is shown by `dsetup packages`.
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

// Repository is a third-party apt repository.
// Either PPA is set, or KeyURL and Line describe a signed sources entry.
type Repository struct {
	Name   string `yaml:"name" toml:"name"`
	PPA    string `yaml:"ppa,omitempty" toml:"ppa,omitempty"`
	KeyURL string `yaml:"key_url,omitempty" toml:"key_url,omitempty"`

	// Line is the sources.list entry. {{codename}}, {{arch}} and {{keyring}}
	// are substituted before it is written.
	Line string `yaml:"line,omitempty" toml:"line,omitempty"`
}

// IsPPA reports whether the repository is added with add-apt-repository.
func (r Repository) IsPPA() bool {
	return r.PPA != ""
}

// FlatpakRemote is a Flatpak remote registered before flatpak installs.
type FlatpakRemote struct {
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`
}

// Download is a .deb file fetched over HTTPS and installed with apt.
type Download struct {
	// Name is the package the .deb installs; it is skipped when installed.
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`

	// SHA256 is verified when set.
	SHA256 string `yaml:"sha256,omitempty" toml:"sha256,omitempty"`
}

// Manifest is the full, ordered description of a provisioning run.
type Manifest struct {
	Version        string          `yaml:"version" toml:"version"`
	SkipUpdate     bool            `yaml:"skip_update,omitempty" toml:"skip_update,omitempty"`
	SkipCleanup    bool            `yaml:"skip_cleanup,omitempty" toml:"skip_cleanup,omitempty"`
	Repositories   []Repository    `yaml:"repositories,omitempty" toml:"repositories,omitempty"`
	FlatpakRemotes []FlatpakRemote `yaml:"flatpak_remotes,omitempty" toml:"flatpak_remotes,omitempty"`
	Downloads      []Download      `yaml:"downloads,omitempty" toml:"downloads,omitempty"`
	Packages       []Package       `yaml:"packages,omitempty" toml:"packages,omitempty"`
	Remove         []string        `yaml:"remove,omitempty" toml:"remove,omitempty"`
}

// IsEmpty reports whether there is nothing to install.
func (m *Manifest) IsEmpty() bool {
	return len(m.Packages) == 0 && len(m.Downloads) == 0
}

// BySource returns the packages of one source, in manifest order.
func (m *Manifest) BySource(source Source) []Package {
	var result []Package
	for _, pkg := range m.Packages {
		if pkg.Source == source {
			result = append(result, pkg)
		}
	}
	return result
}

// UsedSources returns the sources that have at least one package, in run order.
// Downloads count as apt.
func (m *Manifest) UsedSources() []Source {
	var result []Source
	for _, source := range Sources {
		if len(m.BySource(source)) > 0 || (source == SourceApt && (len(m.Downloads) > 0 || len(m.Remove) > 0)) {
			result = append(result, source)
		}
	}
	return result
}

// Names returns the names of all packages in order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Packages))
	for i, pkg := range m.Packages {
		names[i] = pkg.Name
	}
	return names
}

// Get returns a package by exact name, or nil if not found.
func (m *Manifest) Get(name string) *Package {
	for i := range m.Packages {
		if m.Packages[i].Name == name {
			pkg := m.Packages[i]
			return &pkg
		}
	}
	return nil
}
