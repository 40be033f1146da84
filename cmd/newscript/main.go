// Package main provides newscript, which creates an executable bash script
// with a metadata header and opens it in an editor.
//
//	newscript <script-name>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/scaffold"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, executor.NewRealRunner()))
}

// run executes newscript and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, runner executor.Runner) int {
	logging.SetupLoggerWithOutput(0, stderr, logging.LogFilePath())

	s := scaffold.New(runner)
	cmd := newRootCmd(s)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, scaffold.ErrUsage):
		fmt.Fprintln(stderr, scaffold.UsageMessage)
	case errors.Is(err, scaffold.ErrExists):
		fmt.Fprintln(stderr, err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

// newRootCmd takes every argument literally: a script may be named "-h".
func newRootCmd(s *scaffold.Scaffolder) *cobra.Command {
	return &cobra.Command{
		Use:                "newscript <script-name>",
		Short:              "Create an executable bash script",
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globalconfig.Load()
			switch {
			case err == nil:
				cfg.ApplyScaffold(s)
			case !errors.Is(err, globalconfig.ErrNotInitialized):
				logger := logging.GetLogger("newscript")
				logger.Warn().Err(err).Msg("Ignoring unreadable config")
			}

			_, err = s.Run(cmd.Context(), args)
			return err
		},
	}
}
