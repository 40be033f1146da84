package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/validation"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Check a manifest for errors",
		Long:  `Validate package names, sources, repositories and download URLs without running anything.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath := root.manifestPath
			if len(args) == 1 {
				flagPath = args[0]
			}
			return runValidate(cmd, flagPath)
		},
	}
}

func runValidate(cmd *cobra.Command, flagPath string) error {
	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path, err := findManifestPath(flagPath, cfg)
	if err != nil {
		return err
	}

	v := validation.NewValidator()
	var result *validation.Result
	if path == "" {
		m, err := manifest.LoadDefault()
		if err != nil {
			return err
		}
		result = v.Validate(embeddedManifestName, m)
	} else {
		result = v.ValidateFile(path)
	}

	ui.RenderValidation(cmd.OutOrStdout(), result)

	if result.HasErrors() {
		return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount())
	}
	return nil
}
