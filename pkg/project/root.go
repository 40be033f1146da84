// Package project locates the dsetup manifest for the current directory.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ManifestNames are the file names searched for, in order of preference.
var ManifestNames = []string{"dsetup.yaml", "dsetup.yml", "dsetup.toml"}

// ErrNoManifest is returned when no manifest is found up to the filesystem root.
var ErrNoManifest = errors.New("no dsetup manifest found (looked for dsetup.yaml, dsetup.yml or dsetup.toml)")

// FindManifest walks up from the current working directory looking for a manifest.
func FindManifest() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindManifestFrom(cwd)
}

// FindManifestFrom walks up from dir looking for a manifest.
func FindManifestFrom(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return "", ErrNoManifest
}
