package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/download"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/history"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/platform"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/shellenv"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/validation"
)

// systemPath holds the admin directories apt maintainer scripts expect on PATH.
var systemPath = []string{"/usr/local/sbin", "/usr/sbin", "/sbin"}

type provisionOptions struct {
	dryRun    bool
	assumeYes bool
	noHistory bool
}

func newProvisionCmd(root *rootOptions) *cobra.Command {
	opts := &provisionOptions{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install everything the manifest declares",
		Long: heredoc.Doc(`
			Run the manifest once, top to bottom: apt update, repositories,
			.deb downloads, apt, Flatpak and Snap packages, removals and cleanup.

			Packages that are already installed are skipped. Failed steps are
			reported at the end and make the command exit with status 1.
		`),
		Example: heredoc.Doc(`
			dsetup provision --dry-run
			dsetup provision -m ~/dotfiles/dsetup.yaml --yes
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Print the plan without running anything")
	cmd.Flags().BoolVarP(&opts.assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not save the run report")

	return cmd
}

func runProvision(cmd *cobra.Command, root *rootOptions, opts *provisionOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := logging.GetLogger("provision")

	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, name, err := loadManifest(root.manifestPath, cfg)
	if err != nil {
		return err
	}

	result := validation.NewValidator().Validate(name, m)
	if result.HasErrors() {
		ui.RenderValidation(cmd.ErrOrStderr(), result)
		return fmt.Errorf("manifest has %d error(s)", result.ErrorCount())
	}
	for _, issue := range result.Issues {
		logger.Warn().Str("field", issue.Field).Msg(issue.Message)
	}

	info, err := platform.Detect()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read os-release; {{codename}} entries will fail")
	} else if !info.IsDebianLike() {
		logger.Warn().Str("id", info.ID).Msg("Distribution is not Debian-based")
	}

	if !opts.dryRun && !opts.assumeYes && !cfg.Preferences.AssumeYes && ui.IsTerminal(out) {
		ok, err := ui.Confirm(fmt.Sprintf("Provision %d packages from %s?", len(m.Packages)+len(m.Downloads), name), cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	runner := &executor.RealRunner{Env: shellenv.EnsurePathEnv(os.Environ(), systemPath...)}
	p := provision.New(provision.Options{
		Runner:     runner,
		Privileged: executor.NewSudoRunner(runner, cfg.UseSudo),
		Fetcher:    ui.NewFetcher(cmd.InOrStdin(), out, download.NewDownloader()),
		Platform:   info,
		CacheDir:   cfg.CacheDir,
		Out:        out,
	})

	report, err := p.Run(ctx, m, provision.RunOptions{
		ManifestName: name,
		DryRun:       opts.dryRun,
		OnItem: func(item provision.ItemResult) {
			// Skips already printed their own notice.
			if item.Status == provision.StatusSkipped {
				logger.Info().Str("item", item.Name).Str("reason", item.Message).Msg("Skipped")
				return
			}
			fmt.Fprintln(out, ui.FormatItem(item))
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	ui.RenderSummary(out, report)

	if !opts.dryRun && !opts.noHistory {
		if path, err := history.NewStore().Save(report); err != nil {
			logger.Warn().Err(err).Msg("Failed to save run report")
		} else {
			logger.Debug().Str("path", path).Msg("Saved run report")
		}
	}

	return report.Err()
}
