package provision

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
)

// Installer installs an ordered list of packages from one backend, skipping
// those already installed. A failed install never stops the packages after it.
type Installer struct {
	backend Backend
	runner  executor.Runner
	out     io.Writer
	logger  zerolog.Logger
}

// NewInstaller creates an Installer. runner executes the install commands and
// is usually privileged; out receives the "already installed" notices.
func NewInstaller(backend Backend, runner executor.Runner, out io.Writer) *Installer {
	if out == nil {
		out = io.Discard
	}
	return &Installer{
		backend: backend,
		runner:  runner,
		out:     out,
		logger:  logging.GetLogger("installer").With().Str("source", string(backend.Source())).Logger(),
	}
}

// Install processes pkgs in order and returns one result per package.
// It returns manifest.ErrEmpty when pkgs is empty.
func (i *Installer) Install(ctx context.Context, pkgs []manifest.Package) ([]ItemResult, error) {
	if len(pkgs) == 0 {
		return nil, manifest.ErrEmpty
	}

	done := logging.LogOperationStart(i.logger, "install")
	defer done()

	inv, err := i.backend.Inventory(ctx)
	if err != nil {
		// Without an inventory every package is attempted; the package
		// manager itself treats reinstalling as a no-op.
		i.logger.Warn().Err(err).Msg("Could not read installed packages")
		inv = make(Inventory)
	}

	results := make([]ItemResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			results = append(results, failedItem(PhaseInstall, pkg.Name, err))
			continue
		}
		results = append(results, i.installOne(ctx, inv, pkg))
	}
	return results, nil
}

func (i *Installer) installOne(ctx context.Context, inv Inventory, pkg manifest.Package) ItemResult {
	if version, ok := inv.Version(pkg.Name); ok {
		fmt.Fprintf(i.out, "%s is already installed\n", pkg.Name)
		i.logger.Info().Str("package", pkg.Name).Str("version", version).Msg("Already installed, skipping")
		return ItemResult{
			Phase:   PhaseInstall,
			Name:    pkg.Name,
			Status:  StatusSkipped,
			Message: alreadyInstalledMessage(version),
		}
	}

	name, args := i.backend.InstallCommand(pkg)
	logging.LogCommand(i.logger, name, args)

	result, err := executor.Check(ctx, i.runner, name, args...)
	if err != nil {
		i.logger.Error().Err(err).Str("package", pkg.Name).Msg("Install failed")
	} else {
		inv[pkg.Name] = pkg.Version
	}
	return commandItem(PhaseInstall, pkg.Name, result, err)
}

func alreadyInstalledMessage(version string) string {
	if version == "" {
		return "already installed"
	}
	return "already installed (" + version + ")"
}
