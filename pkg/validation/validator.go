// Package validation checks dsetup manifests before they are provisioned.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
)

// Severity represents the severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue represents a validation issue found in a manifest.
type Issue struct {
	File     string   `json:"file"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result holds all validation results.
type Result struct {
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if there are any error-level issues.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(severity Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

var (
	aptNamePattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)
	snapNamePattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	flatpakIDPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*){2,}$`)
	repoNamePattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	ppaPattern          = regexp.MustCompile(`^ppa:[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)
	sha256Pattern       = regexp.MustCompile(`^[0-9a-f]{64}$`)
	remoteNamePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	aptVersionPattern   = regexp.MustCompile(`^[A-Za-z0-9.+~:-]+$`)
	sourcesLinePrefixes = []string{"deb ", "deb-src "}
)

// Validator validates manifest files.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateFile loads the manifest at path and validates it. Load failures
// become a single error issue.
func (v *Validator) ValidateFile(path string) *Result {
	m, err := manifest.Load(path)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, manifest.ErrEmpty) {
			msg = "manifest declares no packages or downloads"
		}
		return &Result{Issues: []Issue{{File: path, Message: msg, Severity: SeverityError}}}
	}
	return v.Validate(path, m)
}

// Validate checks an already loaded manifest. file labels the issues.
func (v *Validator) Validate(file string, m *manifest.Manifest) *Result {
	c := &collector{file: file}

	if m.IsEmpty() {
		c.errorf("", "manifest declares no packages or downloads")
	}
	if m.Version != manifest.Version {
		c.warnf("version", "unknown manifest version %q (expected %q)", m.Version, manifest.Version)
	}

	c.repositories(m.Repositories)
	c.flatpakRemotes(m.FlatpakRemotes)
	c.downloads(m.Downloads)
	c.packages(m)
	c.remove(m)

	return &Result{Issues: c.issues}
}

type collector struct {
	file   string
	issues []Issue
}

func (c *collector) errorf(field, format string, args ...any) {
	c.issues = append(c.issues, Issue{File: c.file, Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (c *collector) warnf(field, format string, args ...any) {
	c.issues = append(c.issues, Issue{File: c.file, Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (c *collector) repositories(repos []manifest.Repository) {
	seen := make(map[string]bool)
	for i, repo := range repos {
		field := fmt.Sprintf("repositories[%d]", i)

		switch {
		case repo.Name == "":
			c.errorf(field+".name", "repository name is required")
		case !repoNamePattern.MatchString(repo.Name):
			c.errorf(field+".name", "invalid repository name %q: use lowercase letters, digits, '.', '_' and '-'", repo.Name)
		case seen[repo.Name]:
			c.warnf(field+".name", "duplicate repository %q", repo.Name)
		}
		seen[repo.Name] = true

		signed := repo.KeyURL != "" || repo.Line != ""
		switch {
		case repo.IsPPA() && signed:
			c.errorf(field, "repository %q sets both ppa and key_url/line", repo.Name)
		case repo.IsPPA():
			if !ppaPattern.MatchString(repo.PPA) {
				c.errorf(field+".ppa", "invalid PPA %q: expected ppa:owner/name", repo.PPA)
			}
		case repo.KeyURL == "" || repo.Line == "":
			c.errorf(field, "repository %q needs either ppa or both key_url and line", repo.Name)
		default:
			if err := checkHTTPS(repo.KeyURL); err != nil {
				c.errorf(field+".key_url", "%v", err)
			}
			if !hasSourcesPrefix(repo.Line) {
				c.errorf(field+".line", "sources line must start with 'deb ' or 'deb-src '")
			}
			if !strings.Contains(repo.Line, "{{keyring}}") {
				c.warnf(field+".line", "sources line does not reference {{keyring}}; the downloaded key will not be used")
			}
		}
	}
}

func (c *collector) flatpakRemotes(remotes []manifest.FlatpakRemote) {
	for i, remote := range remotes {
		field := fmt.Sprintf("flatpak_remotes[%d]", i)
		if !remoteNamePattern.MatchString(remote.Name) {
			c.errorf(field+".name", "invalid flatpak remote name %q", remote.Name)
		}
		if err := checkHTTPS(remote.URL); err != nil {
			c.errorf(field+".url", "%v", err)
		}
	}
}

func (c *collector) downloads(downloads []manifest.Download) {
	seen := make(map[string]bool)
	for i, dl := range downloads {
		field := fmt.Sprintf("downloads[%d]", i)

		switch {
		case dl.Name == "":
			c.errorf(field+".name", "download name is required")
		case !aptNamePattern.MatchString(dl.Name):
			c.errorf(field+".name", "invalid package name %q", dl.Name)
		case seen[dl.Name]:
			c.warnf(field+".name", "duplicate download %q", dl.Name)
		}
		seen[dl.Name] = true

		if err := checkHTTPS(dl.URL); err != nil {
			c.errorf(field+".url", "%v", err)
		}
		if dl.SHA256 != "" && !sha256Pattern.MatchString(dl.SHA256) {
			c.errorf(field+".sha256", "sha256 must be 64 hex characters")
		}
	}
}

func (c *collector) packages(m *manifest.Manifest) {
	remotes := map[string]bool{manifest.DefaultFlatpakRemote: false}
	for _, r := range m.FlatpakRemotes {
		remotes[r.Name] = true
	}

	seen := make(map[string]bool)
	for i, pkg := range m.Packages {
		field := fmt.Sprintf("packages[%d]", i)

		if !pkg.Source.Valid() {
			c.errorf(field+".source", "unknown source %q (use apt, flatpak or snap)", pkg.Source)
			continue
		}

		if pkg.Name == "" {
			c.errorf(field+".name", "package name is required")
			continue
		}
		if err := checkName(pkg.Source, pkg.Name); err != nil {
			c.errorf(field+".name", "%v", err)
		}

		key := string(pkg.Source) + "/" + pkg.Name
		if seen[key] {
			c.warnf(field+".name", "duplicate %s package %q", pkg.Source, pkg.Name)
		}
		seen[key] = true

		if pkg.Version != "" {
			if pkg.Source != manifest.SourceApt {
				c.warnf(field+".version", "version is only honoured for apt packages")
			} else if !aptVersionPattern.MatchString(pkg.Version) {
				c.errorf(field+".version", "invalid apt version %q", pkg.Version)
			}
		}
		if pkg.Classic && pkg.Source != manifest.SourceSnap {
			c.warnf(field+".classic", "classic is only honoured for snap packages")
		}
		if pkg.Source == manifest.SourceFlatpak {
			if declared, ok := remotes[pkg.Remote]; !ok || !declared {
				c.warnf(field+".remote", "flatpak remote %q is not declared in flatpak_remotes", pkg.Remote)
			}
		}
	}
}

func (c *collector) remove(m *manifest.Manifest) {
	for i, name := range m.Remove {
		field := fmt.Sprintf("remove[%d]", i)
		if name == "" {
			c.errorf(field, "package name is required")
			continue
		}
		if !aptNamePattern.MatchString(name) {
			c.errorf(field, "invalid package name %q", name)
		}
		if pkg := m.Get(name); pkg != nil && pkg.Source == manifest.SourceApt {
			c.warnf(field, "%q is both installed and removed", name)
		}
	}
}

func checkName(source manifest.Source, name string) error {
	switch source {
	case manifest.SourceFlatpak:
		if !flatpakIDPattern.MatchString(name) {
			return fmt.Errorf("invalid flatpak application ID %q: expected reverse-DNS like org.videolan.VLC", name)
		}
	case manifest.SourceSnap:
		if !snapNamePattern.MatchString(name) {
			return fmt.Errorf("invalid snap name %q", name)
		}
	default:
		if !aptNamePattern.MatchString(name) {
			return fmt.Errorf("invalid package name %q", name)
		}
	}
	return nil
}

func checkHTTPS(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %v", raw, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("url %q must use https", raw)
	}
	return nil
}

func hasSourcesPrefix(line string) bool {
	for _, prefix := range sourcesLinePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
