package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/validation"
)

func newInitCmd() *cobra.Command {
	var writeDefault bool

	cmd := &cobra.Command{
		Use:   "init <manifest>",
		Short: "Set the default manifest",
		Long: `Record the manifest dsetup uses when --manifest is not given.

With --write-default, a missing manifest file is first created from the
built-in desktop manifest so it can be edited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0], writeDefault)
		},
	}

	cmd.Flags().BoolVar(&writeDefault, "write-default", false, "Create the manifest from the built-in one if it does not exist")

	return cmd
}

func runInit(cmd *cobra.Command, path string, writeDefault bool) error {
	out := cmd.OutOrStdout()

	if writeDefault {
		created, err := writeDefaultManifest(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "%s Wrote built-in manifest to %s\n", ui.SuccessStyle.Render(ui.IconOK), path)
		}
	}

	result := validation.NewValidator().ValidateFile(path)
	if result.HasErrors() {
		ui.RenderValidation(cmd.ErrOrStderr(), result)
		return fmt.Errorf("manifest has %d error(s)", result.ErrorCount())
	}

	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetManifestPath(path); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Manifest set to %s\n", ui.SuccessStyle.Render(ui.IconOK), cfg.ManifestPath)
	fmt.Fprintf(out, "  Config: %s\n", ui.DimStyle.Render(globalconfig.GetConfigPath()))
	return nil
}

// writeDefaultManifest creates path from the built-in manifest. It reports
// false when the file already exists.
func writeDefaultManifest(path string) (bool, error) {
	return writeNewFile(path, func(w io.Writer) error {
		_, err := w.Write(manifest.DefaultManifestYAML())
		return err
	})
}

// writeNewFile creates path exclusively and fills it with write. A failed
// write or close removes the file so a later run does not find it half done.
func writeNewFile(path string, write func(io.Writer) error) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}

	err = write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
