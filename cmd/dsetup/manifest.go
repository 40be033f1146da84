package main

import (
	"errors"
	"fmt"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/project"
)

// embeddedManifestName labels the built-in manifest in reports.
const embeddedManifestName = "built-in desktop manifest"

// findManifestPath returns the manifest file to use, or "" for the built-in one.
func findManifestPath(flagPath string, cfg *globalconfig.Config) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}

	configured, err := cfg.Manifest()
	if err != nil {
		return "", err
	}
	if configured != "" {
		return configured, nil
	}

	found, err := project.FindManifest()
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, project.ErrNoManifest) {
		return "", err
	}
	return "", nil
}

// loadManifest resolves and loads the manifest. The returned name is the file
// path, or a label for the built-in manifest.
func loadManifest(flagPath string, cfg *globalconfig.Config) (*manifest.Manifest, string, error) {
	path, err := findManifestPath(flagPath, cfg)
	if err != nil {
		return nil, "", err
	}

	logger := logging.GetLogger("manifest")
	if path == "" {
		logger.Info().Msg("Using built-in desktop manifest")
		m, err := manifest.LoadDefault()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load built-in manifest: %w", err)
		}
		return m, embeddedManifestName, nil
	}

	logger.Info().Str("path", path).Msg("Loading manifest")
	m, err := manifest.Load(path)
	if err != nil {
		return nil, "", err
	}
	return m, path, nil
}
