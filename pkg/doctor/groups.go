package doctor

import "github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"

// groupDefinition describes a check group.
type groupDefinition struct {
	Name        string
	Description string
	CheckIDs    []string
}

// groupDefinitions defines the check groups with their metadata.
var groupDefinitions = map[string]groupDefinition{
	GroupSystem: {
		Name:        "System",
		Description: "Required for every provisioning run",
		CheckIDs:    []string{IDOSRelease, IDAptGet, IDDpkgQuery},
	},
	GroupRepositories: {
		Name:        "Repositories",
		Description: "Required to add PPAs and signed apt repositories",
		CheckIDs:    []string{IDAddAptRepository, IDGpg},
	},
	GroupFlatpak: {
		Name:        "Flatpak",
		Description: "Required for flatpak packages",
		CheckIDs:    []string{IDFlatpak, IDFlathub},
	},
	GroupSnap: {
		Name:        "Snap",
		Description: "Required for snap packages",
		CheckIDs:    []string{IDSnap},
	},
	GroupShell: {
		Name:        "Shell",
		Description: "Script scaffolding and fzf shell integration",
		CheckIDs:    []string{IDEditor, IDFzf},
	},
}

// GetAllGroupIDs returns all group IDs in display order.
func GetAllGroupIDs() []string {
	return []string{GroupSystem, GroupRepositories, GroupFlatpak, GroupSnap, GroupShell}
}

// GroupsFor returns the group IDs a manifest needs. A nil manifest selects
// every group.
func GroupsFor(m *manifest.Manifest) []string {
	if m == nil {
		return GetAllGroupIDs()
	}

	groups := []string{GroupSystem}
	if len(m.Repositories) > 0 {
		groups = append(groups, GroupRepositories)
	}
	for _, source := range m.UsedSources() {
		switch source {
		case manifest.SourceFlatpak:
			groups = append(groups, GroupFlatpak)
		case manifest.SourceSnap:
			groups = append(groups, GroupSnap)
		}
	}
	return append(groups, GroupShell)
}

// GetGroupDefinition returns the definition for a specific group.
func GetGroupDefinition(groupID string) (groupDefinition, bool) {
	def, ok := groupDefinitions[groupID]
	return def, ok
}
