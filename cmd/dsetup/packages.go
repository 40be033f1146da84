package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
)

func newPackagesCmd(root *rootOptions) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List the packages in the manifest",
		Long:  `List the packages the manifest installs, grouped by source. With --status, each is checked against the installed inventory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPackages(cmd, root, status, executor.NewRealRunner())
		},
	}

	cmd.Flags().BoolVarP(&status, "status", "s", false, "Show whether each package is installed")

	return cmd
}

// runPackages lists manifest packages by source.
func runPackages(cmd *cobra.Command, root *rootOptions, status bool, runner executor.Runner) error {
	out := cmd.OutOrStdout()

	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	m, name, err := loadManifest(root.manifestPath, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", ui.TitleStyle.Render(fmt.Sprintf("%d packages in %s", len(m.Packages), name)))

	for _, source := range manifest.Sources {
		pkgs := m.BySource(source)
		if len(pkgs) == 0 {
			continue
		}

		var inv provision.Inventory
		if status {
			backend, err := provision.NewBackend(source, runner)
			if err != nil {
				return err
			}
			inv, err = backend.Inventory(cmd.Context())
			if err != nil {
				logger := logging.GetLogger("packages")
				logger.Warn().Err(err).Str("source", string(source)).Msg("Failed to read inventory")
			}
		}

		fmt.Fprintf(out, "%s:\n", source)
		for _, pkg := range pkgs {
			desc := pkg.Description
			if desc == "" {
				desc = "(no description)"
			}
			line := fmt.Sprintf("  - %s: %s", pkg.Name, ui.DimStyle.Render(desc))
			if status {
				if version, ok := inv.Version(pkg.Name); ok {
					line += " " + ui.SuccessStyle.Render("installed "+version)
				} else {
					line += " " + ui.WarningStyle.Render("not installed")
				}
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}

	if len(m.Downloads) > 0 {
		fmt.Fprintln(out, "downloads:")
		for _, dl := range m.Downloads {
			fmt.Fprintf(out, "  - %s: %s\n", dl.Name, ui.DimStyle.Render(dl.URL))
		}
		fmt.Fprintln(out)
	}

	if len(m.Remove) > 0 {
		fmt.Fprintln(out, "remove:")
		for _, name := range m.Remove {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	}

	return nil
}
