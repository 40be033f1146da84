package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/scaffold"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
)

func newScaffoldCmd() *cobra.Command {
	var noEdit bool

	cmd := &cobra.Command{
		Use:   "scaffold <script-name>",
		Short: "Create an executable bash script with a header",
		Long: `Create a new bash script with a metadata header, make it executable and open it
in the configured editor. Existing files are never overwritten.`,
		// The scaffolder reports the usage error itself.
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scaffold.New(executor.NewRealRunner())
			s.SkipEdit = noEdit
			return runScaffold(cmd, s, args)
		},
	}

	cmd.Flags().BoolVar(&noEdit, "no-edit", false, "Do not open the editor")

	return cmd
}

func runScaffold(cmd *cobra.Command, s *scaffold.Scaffolder, args []string) error {
	cfg, err := globalconfig.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyScaffold(s)

	path, err := s.Run(cmd.Context(), args)
	switch {
	case errors.Is(err, scaffold.ErrUsage):
		fmt.Fprintf(cmd.ErrOrStderr(), "Usage: %s\n", cmd.UseLine())
		return err
	case errors.Is(err, scaffold.ErrExists):
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	case errors.Is(err, executor.ErrCommandFailed):
		// The file was written before the editor failed.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: editor failed for %s: %v\n", path, err)
		return err
	case err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", ui.SuccessStyle.Render(ui.IconOK), path)
	return nil
}
