// Package platform describes the host distribution.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// OSReleasePath is the standard location of the os-release file.
const OSReleasePath = "/etc/os-release"

// Info holds the fields of os-release that provisioning cares about.
type Info struct {
	ID         string
	IDLike     []string
	VersionID  string
	Codename   string
	PrettyName string
	Arch       string
}

// Detect reads the host's os-release file.
func Detect() (*Info, error) {
	return Load(OSReleasePath)
}

// Load reads an os-release file from path.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read os-release: %w", err)
	}
	return Parse(data)
}

// Parse parses os-release content. The format is shell-style KEY=value lines,
// which the ini parser reads as keys of the default section.
func Parse(data []byte) (*Info, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		SkipUnrecognizableLines:   true,
		UnescapeValueDoubleQuotes: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse os-release: %w", err)
	}

	sec := cfg.Section(ini.DefaultSection)
	info := &Info{
		ID:         unquote(sec.Key("ID").String()),
		VersionID:  unquote(sec.Key("VERSION_ID").String()),
		Codename:   unquote(sec.Key("VERSION_CODENAME").String()),
		PrettyName: unquote(sec.Key("PRETTY_NAME").String()),
		Arch:       DebianArch(runtime.GOARCH),
	}
	if info.Codename == "" {
		info.Codename = unquote(sec.Key("UBUNTU_CODENAME").String())
	}
	if like := unquote(sec.Key("ID_LIKE").String()); like != "" {
		info.IDLike = strings.Fields(like)
	}

	return info, nil
}

// IsDebianLike reports whether apt and dpkg are the native package tools.
func (i *Info) IsDebianLike() bool {
	if i.ID == "debian" || i.ID == "ubuntu" {
		return true
	}
	for _, like := range i.IDLike {
		if like == "debian" || like == "ubuntu" {
			return true
		}
	}
	return false
}

// DebianArch maps a Go architecture to the dpkg architecture name.
func DebianArch(goarch string) string {
	switch goarch {
	case "arm":
		return "armhf"
	case "386":
		return "i386"
	case "ppc64le":
		return "ppc64el"
	default:
		return goarch
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
