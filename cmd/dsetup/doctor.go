package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/doctor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/shellenv"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
)

type doctorOptions struct {
	fix bool
	all bool
}

func newDoctorCmd(root *rootOptions) *cobra.Command {
	opts := &doctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the tools provisioning depends on",
		Long: `Check that apt, dpkg, the repository tools, Flatpak, Snap, the editor and fzf
are available. Only the groups the manifest needs are checked unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fix, "fix", false, "Install missing tools")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Check every group")

	return cmd
}

func runDoctor(cmd *cobra.Command, root *rootOptions, opts *doctorOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := logging.GetLogger("doctor")

	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var m *manifest.Manifest
	if !opts.all {
		m, _, err = loadManifest(root.manifestPath, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not load manifest, checking every group")
			m = nil
		}
	}

	runner := &executor.RealRunner{Env: shellenv.EnsurePathEnv(os.Environ(), systemPath...)}
	checker := doctor.NewCheckerWithRunner(runner, doctor.Options{
		Editor: cfg.Scaffold.Editor,
		FzfDir: cfg.Fzf.Dir,
	})

	groups := checker.CheckAll(ctx, m)
	ui.RenderDoctor(out, groups)

	if !doctor.HasIssues(groups) {
		return nil
	}

	if !opts.fix {
		fmt.Fprintln(out, ui.DimStyle.Render("Run 'dsetup doctor --fix' to install missing tools."))
		return fmt.Errorf("doctor found issues")
	}

	fixer := doctor.NewFixer(runner, executor.NewSudoRunner(runner, cfg.UseSudo))
	for id, err := range fixer.FixAll(ctx, groups) {
		fmt.Fprintf(out, "%s %s: %v\n", ui.ErrorStyle.Render(ui.IconFail), id, err)
	}

	fmt.Fprintln(out)
	groups = checker.CheckAll(ctx, m)
	ui.RenderDoctor(out, groups)

	if doctor.HasIssues(groups) {
		return fmt.Errorf("issues remain after fixing")
	}
	return nil
}
