// Package main provides dsetup, which provisions a Debian-based desktop from a
// manifest and manages the shell fragments and scripts that go with it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
)

// version is set via -ldflags during build
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()

	// Cobra handles error printing
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbosity    int
	manifestPath string
}

// newRootCmd creates the root command for dsetup
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dsetup",
		Short: "Desktop provisioning tool",
		Long: heredoc.Doc(`
			dsetup provisions a Debian or Ubuntu desktop from a manifest.

			A run updates apt, adds repositories, installs downloaded .deb files,
			installs apt, Flatpak and Snap packages, removes unwanted packages and
			cleans up. Anything already installed is skipped, and a failure never
			stops the remaining steps.

			The manifest is taken from --manifest, then the path saved by
			'dsetup init', then a dsetup.yaml or dsetup.toml found by walking up
			from the current directory, and finally the built-in desktop manifest.
		`),
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupLogger(opts.verbosity)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVarP(&opts.manifestPath, "manifest", "m", "", "Manifest file (.yaml or .toml)")

	rootCmd.AddCommand(
		newProvisionCmd(opts),
		newPackagesCmd(opts),
		newValidateCmd(opts),
		newDoctorCmd(opts),
		newScaffoldCmd(),
		newShellInitCmd(),
		newInitCmd(),
		newHistoryCmd(),
	)

	return rootCmd
}
