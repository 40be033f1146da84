package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
)

func issueFields(r *Result, severity Severity) []string {
	var fields []string
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			fields = append(fields, issue.Field)
		}
	}
	return fields
}

func TestValidate_DefaultManifestIsClean(t *testing.T) {
	m, err := manifest.LoadDefault()
	require.NoError(t, err)

	result := NewValidator().Validate("default", m)
	assert.Empty(t, result.Issues)
	assert.False(t, result.HasErrors())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		manifest       manifest.Manifest
		expectedErrors []string
		expectedWarns  []string
	}{
		{
			name: "valid",
			manifest: manifest.Manifest{
				Version:  manifest.Version,
				Packages: []manifest.Package{{Name: "git", Source: manifest.SourceApt}},
			},
		},
		{
			name:           "empty",
			manifest:       manifest.Manifest{Version: manifest.Version},
			expectedErrors: []string{""},
		},
		{
			name: "invalid package names",
			manifest: manifest.Manifest{
				Version: manifest.Version,
				Packages: []manifest.Package{
					{Name: "Git", Source: manifest.SourceApt},
					{Name: "vlc", Source: manifest.SourceFlatpak, Remote: "flathub"},
					{Name: "Telegram_Desktop", Source: manifest.SourceSnap},
				},
				FlatpakRemotes: []manifest.FlatpakRemote{{Name: "flathub", URL: "https://dl.flathub.org/repo/flathub.flatpakrepo"}},
			},
			expectedErrors: []string{"packages[0].name", "packages[1].name", "packages[2].name"},
		},
		{
			name: "unknown source",
			manifest: manifest.Manifest{
				Version:  manifest.Version,
				Packages: []manifest.Package{{Name: "git", Source: "brew"}},
			},
			expectedErrors: []string{"packages[0].source"},
		},
		{
			name: "duplicates warn",
			manifest: manifest.Manifest{
				Version: manifest.Version,
				Packages: []manifest.Package{
					{Name: "git", Source: manifest.SourceApt},
					{Name: "git", Source: manifest.SourceApt},
					{Name: "git", Source: manifest.SourceSnap},
				},
			},
			expectedWarns: []string{"packages[1].name"},
		},
		{
			name: "download checks",
			manifest: manifest.Manifest{
				Version: manifest.Version,
				Downloads: []manifest.Download{
					{Name: "chrome", URL: "http://example.com/chrome.deb"},
					{Name: "zoom", URL: "https://example.com/zoom.deb", SHA256: "abc"},
				},
			},
			expectedErrors: []string{"downloads[0].url", "downloads[1].sha256"},
		},
		{
			name: "repository checks",
			manifest: manifest.Manifest{
				Version: manifest.Version,
				Repositories: []manifest.Repository{
					{Name: "obs", PPA: "obsproject/obs-studio"},
					{Name: "code", KeyURL: "https://example.com/key.asc"},
					{Name: "both", PPA: "ppa:a/b", Line: "deb x"},
					{Name: "plain", KeyURL: "https://example.com/key.asc", Line: "https://example.com stable main"},
				},
				Packages: []manifest.Package{{Name: "git", Source: manifest.SourceApt}},
			},
			expectedErrors: []string{"repositories[0].ppa", "repositories[1]", "repositories[2]", "repositories[3].line"},
			expectedWarns:  []string{"repositories[3].line"},
		},
		{
			name: "source specific options",
			manifest: manifest.Manifest{
				Version: manifest.Version,
				Packages: []manifest.Package{
					{Name: "postman", Source: manifest.SourceSnap, Version: "1.0"},
					{Name: "git", Source: manifest.SourceApt, Classic: true},
					{Name: "org.gimp.GIMP", Source: manifest.SourceFlatpak, Remote: "gnome-nightly"},
				},
			},
			expectedWarns: []string{"packages[0].version", "packages[1].classic", "packages[2].remote"},
		},
		{
			name: "remove overlaps install",
			manifest: manifest.Manifest{
				Version:  manifest.Version,
				Packages: []manifest.Package{{Name: "vim", Source: manifest.SourceApt}},
				Remove:   []string{"vim", ""},
			},
			expectedErrors: []string{"remove[1]"},
			expectedWarns:  []string{"remove[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewValidator().Validate("test.yaml", &tt.manifest)

			assert.ElementsMatch(t, tt.expectedErrors, issueFields(result, SeverityError))
			assert.ElementsMatch(t, tt.expectedWarns, issueFields(result, SeverityWarning))
			assert.Equal(t, len(tt.expectedErrors), result.ErrorCount())
			assert.Equal(t, len(tt.expectedWarns), result.WarningCount())
		})
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("packages:\n  - name: git\n"), 0644))
	result := NewValidator().ValidateFile(valid)
	assert.False(t, result.HasErrors())

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("version: \"1\"\n"), 0644))
	result = NewValidator().ValidateFile(empty)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "manifest declares no packages or downloads", result.Issues[0].Message)

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("pakages:\n  - name: git\n"), 0644))
	result = NewValidator().ValidateFile(typo)
	assert.True(t, result.HasErrors())
	assert.Equal(t, typo, result.Issues[0].File)

	result = NewValidator().ValidateFile(filepath.Join(dir, "missing.toml"))
	assert.True(t, result.HasErrors())
}
