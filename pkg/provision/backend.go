package provision

import (
	"context"
	"fmt"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
)

// Backend is one package manager: it can list what is installed and build the
// command that installs a package with automatic confirmation.
type Backend interface {
	Source() manifest.Source
	Inventory(ctx context.Context) (Inventory, error)
	InstallCommand(pkg manifest.Package) (string, []string)
}

// NewBackend returns the backend for a source.
func NewBackend(source manifest.Source, runner executor.Runner) (Backend, error) {
	switch source {
	case manifest.SourceApt:
		return &AptBackend{runner: runner}, nil
	case manifest.SourceFlatpak:
		return &FlatpakBackend{runner: runner}, nil
	case manifest.SourceSnap:
		return &SnapBackend{runner: runner}, nil
	default:
		return nil, fmt.Errorf("unknown package source: %q", source)
	}
}

// queryInventory runs a listing command and parses its output.
func queryInventory(ctx context.Context, runner executor.Runner, parse func(string) Inventory, name string, args ...string) (Inventory, error) {
	result, err := executor.Check(ctx, runner, name, args...)
	if err != nil {
		return nil, err
	}
	return parse(result.Stdout), nil
}

// AptBackend installs with apt-get and queries dpkg.
type AptBackend struct {
	runner executor.Runner
}

// Source returns manifest.SourceApt.
func (b *AptBackend) Source() manifest.Source { return manifest.SourceApt }

// Inventory lists installed dpkg packages.
func (b *AptBackend) Inventory(ctx context.Context) (Inventory, error) {
	return queryInventory(ctx, b.runner, ParseDpkg, "dpkg-query", "-W", "-f="+dpkgQueryFormat)
}

// InstallCommand returns apt-get install -y, pinning the version when set.
func (b *AptBackend) InstallCommand(pkg manifest.Package) (string, []string) {
	target := pkg.Name
	if pkg.Version != "" {
		target = pkg.Name + "=" + pkg.Version
	}
	return "apt-get", []string{"install", "-y", target}
}

// FlatpakBackend installs applications with flatpak.
type FlatpakBackend struct {
	runner executor.Runner
}

// Source returns manifest.SourceFlatpak.
func (b *FlatpakBackend) Source() manifest.Source { return manifest.SourceFlatpak }

// Inventory lists installed flatpak applications.
func (b *FlatpakBackend) Inventory(ctx context.Context) (Inventory, error) {
	return queryInventory(ctx, b.runner, ParseFlatpak, "flatpak", "list", "--app", "--columns=application,version")
}

// InstallCommand returns flatpak install -y --noninteractive <remote> <id>.
func (b *FlatpakBackend) InstallCommand(pkg manifest.Package) (string, []string) {
	remote := pkg.Remote
	if remote == "" {
		remote = manifest.DefaultFlatpakRemote
	}
	return "flatpak", []string{"install", "-y", "--noninteractive", remote, pkg.Name}
}

// SnapBackend installs snaps.
type SnapBackend struct {
	runner executor.Runner
}

// Source returns manifest.SourceSnap.
func (b *SnapBackend) Source() manifest.Source { return manifest.SourceSnap }

// Inventory lists installed snaps.
func (b *SnapBackend) Inventory(ctx context.Context) (Inventory, error) {
	return queryInventory(ctx, b.runner, ParseSnap, "snap", "list")
}

// InstallCommand returns snap install, with --classic when requested.
func (b *SnapBackend) InstallCommand(pkg manifest.Package) (string, []string) {
	args := []string{"install", pkg.Name}
	if pkg.Classic {
		args = append(args, "--classic")
	}
	return "snap", args
}
