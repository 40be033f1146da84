package doctor

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/platform"
)

var defaultVersionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9]+)?)`)

// checkTool checks if a tool is installed and gets its version. A nil
// versionArgs only checks presence.
func checkTool(ctx context.Context, runner executor.Runner, id, name, desc string, versionArgs []string, versionRegex *regexp.Regexp, fixCmd *FixCommand) Check {
	check := Check{
		ID:          id,
		Name:        name,
		Description: desc,
		FixCommand:  fixCmd,
	}

	path, err := runner.LookPath(id)
	if err != nil {
		check.Status = StatusMissing
		check.Message = "not installed"
		return check
	}

	check.Status = StatusOK
	check.Message = "installed"
	if versionArgs == nil {
		return check
	}

	// Tool exists but version check failed - still consider it OK
	result, err := runner.Run(ctx, path, versionArgs...)
	if err != nil || !result.Success() {
		check.Message = "installed (version unknown)"
		return check
	}

	// Some tools print their version to stderr
	output := result.Stdout
	if strings.TrimSpace(output) == "" {
		output = result.Stderr
	}
	if version := extractVersion(output, versionRegex); version != "" {
		check.Message = version
	}

	return check
}

// extractVersion extracts version string from command output.
func extractVersion(output string, regex *regexp.Regexp) string {
	if regex == nil {
		regex = defaultVersionRegex
	}
	matches := regex.FindStringSubmatch(output)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CheckOSRelease checks that the host is Debian-like.
func CheckOSRelease(path string) Check {
	check := Check{
		ID:          IDOSRelease,
		Name:        "Distribution",
		Description: "apt-based Linux distribution",
	}

	info, err := platform.Load(path)
	if err != nil {
		check.Status = StatusError
		check.Message = err.Error()
		return check
	}

	label := info.PrettyName
	if label == "" {
		label = info.ID
	}
	if !info.IsDebianLike() {
		check.Status = StatusWarning
		check.Message = label + " is not Debian-based; apt steps will fail"
		return check
	}

	check.Status = StatusOK
	check.Message = label
	return check
}

// CheckAptGet checks if apt-get is installed.
func CheckAptGet(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDAptGet,
		"apt-get",
		"Debian package manager",
		[]string{"--version"},
		regexp.MustCompile(`apt (\d+\.\d+(?:\.\d+)?)`),
		nil,
	)
}

// CheckDpkgQuery checks if dpkg-query is installed.
func CheckDpkgQuery(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDDpkgQuery,
		"dpkg-query",
		"Installed package inventory",
		[]string{"--version"},
		regexp.MustCompile(`version (\d+\.\d+(?:\.\d+)?)`),
		nil,
	)
}

// CheckAddAptRepository checks if add-apt-repository is installed.
func CheckAddAptRepository(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDAddAptRepository,
		"add-apt-repository",
		"Adds PPAs",
		nil,
		nil,
		GetFixCommand(IDAddAptRepository),
	)
}

// CheckGpg checks if gpg is installed.
func CheckGpg(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDGpg,
		"GnuPG",
		"Dearmors repository signing keys",
		[]string{"--version"},
		regexp.MustCompile(`gpg \(GnuPG\) (\d+\.\d+\.\d+)`),
		GetFixCommand(IDGpg),
	)
}

// CheckFlatpak checks if flatpak is installed.
func CheckFlatpak(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDFlatpak,
		"Flatpak",
		"Sandboxed desktop applications",
		[]string{"--version"},
		regexp.MustCompile(`Flatpak (\d+\.\d+\.\d+)`),
		GetFixCommand(IDFlatpak),
	)
}

// CheckFlathub checks that the default flatpak remote is configured.
func CheckFlathub(ctx context.Context, runner executor.Runner) Check {
	check := Check{
		ID:          IDFlathub,
		Name:        "Flathub remote",
		Description: "Default source for flatpak packages",
		FixCommand:  GetFixCommand(IDFlathub),
	}

	if _, err := runner.LookPath(IDFlatpak); err != nil {
		check.Status = StatusWarning
		check.Message = "flatpak not installed"
		return check
	}

	result, err := runner.Run(ctx, "flatpak", "remotes", "--columns=name")
	if err != nil || !result.Success() {
		check.Status = StatusError
		check.Message = "failed to list remotes"
		if diag := result.Diagnostic(); diag != "" {
			check.Message += ": " + diag
		}
		return check
	}

	for _, line := range strings.Split(result.Stdout, "\n") {
		if strings.TrimSpace(line) == manifest.DefaultFlatpakRemote {
			check.Status = StatusOK
			check.Message = "configured"
			return check
		}
	}

	check.Status = StatusMissing
	check.Message = "not configured"
	return check
}

// CheckSnap checks if snap is installed.
func CheckSnap(ctx context.Context, runner executor.Runner) Check {
	return checkTool(
		ctx,
		runner,
		IDSnap,
		"Snap",
		"Canonical snap packages",
		[]string{"version"},
		regexp.MustCompile(`snap\s+(\S+)`),
		GetFixCommand(IDSnap),
	)
}

// CheckEditor checks that the scaffolder's editor can be found.
func CheckEditor(runner executor.Runner, editor string) Check {
	check := Check{
		ID:          IDEditor,
		Name:        "Editor",
		Description: "Opens newly scaffolded scripts",
	}

	fields := strings.Fields(editor)
	if len(fields) == 0 {
		check.Status = StatusError
		check.Message = "no editor configured"
		return check
	}
	check.FixCommand = editorFix(fields[0])

	path, err := runner.LookPath(fields[0])
	if err != nil {
		check.Status = StatusMissing
		check.Message = fields[0] + " not installed"
		return check
	}

	check.Status = StatusOK
	check.Message = path
	return check
}

// CheckFzf checks that the fzf checkout the shell fragments source exists.
func CheckFzf(exists func(string) bool, dir string) Check {
	check := Check{
		ID:          IDFzf,
		Name:        "fzf",
		Description: "Fuzzy finder sourced by the shell fragments",
		FixCommand:  fzfFix(dir),
	}

	if dir == "" {
		check.Status = StatusError
		check.Message = "no fzf directory configured"
		return check
	}

	if !exists(filepath.Join(dir, "shell", "key-bindings.bash")) {
		check.Status = StatusMissing
		check.Message = "no fzf checkout at " + dir
		return check
	}

	if !exists(filepath.Join(dir, "bin", "fzf")) {
		check.Status = StatusWarning
		check.Message = "checkout present but bin/fzf is missing (run install --bin)"
		return check
	}

	check.Status = StatusOK
	check.Message = dir
	return check
}
