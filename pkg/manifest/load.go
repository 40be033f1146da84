package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a manifest file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest content. Unknown fields are rejected so that typos
// surface instead of silently dropping packages.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format: %s", format)
	}

	m.normalize()

	if m.IsEmpty() {
		return nil, ErrEmpty
	}
	return &m, nil
}

// LoadDefault returns the embedded desktop manifest.
func LoadDefault() (*Manifest, error) {
	return Parse(defaultManifest, FormatYAML)
}

// normalize trims names and fills defaults.
func (m *Manifest) normalize() {
	if m.Version == "" {
		m.Version = Version
	}

	for i := range m.Packages {
		pkg := &m.Packages[i]
		pkg.Name = strings.TrimSpace(pkg.Name)
		pkg.Version = strings.TrimSpace(pkg.Version)
		if pkg.Source == "" {
			pkg.Source = SourceApt
		}
		if pkg.Source == SourceFlatpak && pkg.Remote == "" {
			pkg.Remote = DefaultFlatpakRemote
		}
	}

	for i := range m.Downloads {
		m.Downloads[i].Name = strings.TrimSpace(m.Downloads[i].Name)
		m.Downloads[i].SHA256 = strings.ToLower(strings.TrimSpace(m.Downloads[i].SHA256))
	}

	for i := range m.Remove {
		m.Remove[i] = strings.TrimSpace(m.Remove[i])
	}
}
