package manifest

import _ "embed"

// DefaultFlatpakRemote is used for flatpak packages that name no remote.
const DefaultFlatpakRemote = "flathub"

// defaultManifest is the desktop package set installed when no manifest is configured.
//
//go:embed defaults/desktop.yaml
var defaultManifest []byte

// DefaultManifestYAML returns the embedded default manifest source, used by
// `dsetup init --write-default` to seed an editable copy.
func DefaultManifestYAML() []byte {
	out := make([]byte, len(defaultManifest))
	copy(out, defaultManifest)
	return out
}
