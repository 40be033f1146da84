package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/testutil"
)

func missing(tools ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, t := range tools {
			if t == file {
				return "", errors.New("not found")
			}
		}
		return "/usr/bin/" + file, nil
	}
}

func writeOSRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "missing", StatusMissing.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "warning", StatusWarning.String())
	assert.Equal(t, "unknown", CheckStatus(99).String())
}

func TestCheckTool_Version(t *testing.T) {
	runner := testutil.NewMockRunner()
	runner.AddOutput("/usr/bin/gpg", []string{"--version"}, "gpg (GnuPG) 2.4.4\nlibgcrypt 1.10.3\n")

	check := CheckGpg(context.Background(), runner)
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "2.4.4", check.Message)
}

func TestCheckTool_Missing(t *testing.T) {
	runner := testutil.NewMockRunner()
	runner.LookPathFunc = missing("flatpak")

	check := CheckFlatpak(context.Background(), runner)
	assert.Equal(t, StatusMissing, check.Status)
	require.NotNil(t, check.FixCommand)
	assert.Equal(t, "sudo apt-get install -y flatpak", check.FixCommand.String())
}

func TestCheckTool_VersionFails(t *testing.T) {
	runner := testutil.NewMockRunner()
	runner.AddFailure("/usr/bin/snap", []string{"version"}, 1, "error: cannot communicate with server")

	check := CheckSnap(context.Background(), runner)
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "installed (version unknown)", check.Message)
}

func TestCheckAddAptRepository_PresenceOnly(t *testing.T) {
	runner := testutil.NewMockRunner()

	check := CheckAddAptRepository(context.Background(), runner)
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "installed", check.Message)
	assert.Empty(t, runner.Calls())
}

func TestCheckFlathub(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*testutil.MockRunner)
		status CheckStatus
	}{
		{
			name: "configured",
			setup: func(r *testutil.MockRunner) {
				r.AddOutput("flatpak", []string{"remotes", "--columns=name"}, "fedora\nflathub\n")
			},
			status: StatusOK,
		},
		{
			name: "not configured",
			setup: func(r *testutil.MockRunner) {
				r.AddOutput("flatpak", []string{"remotes", "--columns=name"}, "flathub-beta\n")
			},
			status: StatusMissing,
		},
		{
			name:   "flatpak missing",
			setup:  func(r *testutil.MockRunner) { r.LookPathFunc = missing("flatpak") },
			status: StatusWarning,
		},
		{
			name: "list fails",
			setup: func(r *testutil.MockRunner) {
				r.AddFailure("flatpak", []string{"remotes", "--columns=name"}, 1, "boom")
			},
			status: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := testutil.NewMockRunner()
			tt.setup(runner)

			check := CheckFlathub(context.Background(), runner)
			assert.Equal(t, tt.status, check.Status)
		})
	}
}

func TestCheckEditor(t *testing.T) {
	runner := testutil.NewMockRunner()

	check := CheckEditor(runner, "code --wait")
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "/usr/bin/code", check.Message)
	assert.Nil(t, check.FixCommand)

	runner.LookPathFunc = missing("vim")
	check = CheckEditor(runner, "vim")
	assert.Equal(t, StatusMissing, check.Status)
	require.NotNil(t, check.FixCommand)
	assert.Equal(t, []string{"install", "-y", "vim"}, check.FixCommand.Args)

	check = CheckEditor(runner, "  ")
	assert.Equal(t, StatusError, check.Status)
}

func TestCheckFzf(t *testing.T) {
	files := map[string]bool{}
	exists := func(p string) bool { return files[p] }

	check := CheckFzf(exists, "/home/me/.fzf")
	assert.Equal(t, StatusMissing, check.Status)
	require.NotNil(t, check.FixCommand)
	assert.Equal(t, "git clone --depth 1 https://github.com/junegunn/fzf.git /home/me/.fzf", check.FixCommand.String())

	files["/home/me/.fzf/shell/key-bindings.bash"] = true
	check = CheckFzf(exists, "/home/me/.fzf")
	assert.Equal(t, StatusWarning, check.Status)

	files["/home/me/.fzf/bin/fzf"] = true
	check = CheckFzf(exists, "/home/me/.fzf")
	assert.Equal(t, StatusOK, check.Status)
}

func TestCheckOSRelease(t *testing.T) {
	ubuntu := writeOSRelease(t, "ID=ubuntu\nID_LIKE=debian\nPRETTY_NAME=\"Ubuntu 24.04 LTS\"\n")
	check := CheckOSRelease(ubuntu)
	assert.Equal(t, StatusOK, check.Status)
	assert.Equal(t, "Ubuntu 24.04 LTS", check.Message)

	fedora := writeOSRelease(t, "ID=fedora\nPRETTY_NAME=\"Fedora Linux 40\"\n")
	check = CheckOSRelease(fedora)
	assert.Equal(t, StatusWarning, check.Status)

	check = CheckOSRelease(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, StatusError, check.Status)
}

func TestGroupsFor(t *testing.T) {
	assert.Equal(t, GetAllGroupIDs(), GroupsFor(nil))

	aptOnly := &manifest.Manifest{Packages: []manifest.Package{{Name: "git", Source: manifest.SourceApt}}}
	assert.Equal(t, []string{GroupSystem, GroupShell}, GroupsFor(aptOnly))

	full := &manifest.Manifest{
		Repositories: []manifest.Repository{{Name: "obs", PPA: "ppa:obsproject/obs-studio"}},
		Packages: []manifest.Package{
			{Name: "git", Source: manifest.SourceApt},
			{Name: "org.gimp.GIMP", Source: manifest.SourceFlatpak},
			{Name: "postman", Source: manifest.SourceSnap},
		},
	}
	assert.Equal(t, []string{GroupSystem, GroupRepositories, GroupFlatpak, GroupSnap, GroupShell}, GroupsFor(full))
}

func TestChecker_CheckAll(t *testing.T) {
	runner := testutil.NewMockRunner()
	runner.LookPathFunc = missing("snap")
	osRelease := writeOSRelease(t, "ID=debian\nPRETTY_NAME=\"Debian 12\"\n")

	fzfDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(fzfDir, "shell"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(fzfDir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fzfDir, "shell", "key-bindings.bash"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(fzfDir, "bin", "fzf"), nil, 0755))

	checker := NewCheckerWithRunner(runner, Options{Editor: "vim", FzfDir: fzfDir, OSReleasePath: osRelease})
	m := &manifest.Manifest{Packages: []manifest.Package{{Name: "postman", Source: manifest.SourceSnap}}}

	groups := checker.CheckAll(context.Background(), m)
	require.Len(t, groups, 3)
	assert.Equal(t, GroupSystem, groups[0].ID)
	assert.Equal(t, GroupSnap, groups[1].ID)
	assert.Equal(t, GroupShell, groups[2].ID)

	summary := GetSummary(groups)
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 1, summary.Missing)
	assert.True(t, HasIssues(groups))
}

func TestChecker_UnknownGroup(t *testing.T) {
	checker := NewCheckerWithRunner(testutil.NewMockRunner(), Options{})
	group := checker.CheckGroup(context.Background(), "nope")
	assert.Equal(t, "Unknown", group.Name)
	assert.Empty(t, group.Checks)
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "2.7.14", extractVersion("apt 2.7.14 (amd64)", nil))
	assert.Equal(t, "", extractVersion("no digits", nil))
}
