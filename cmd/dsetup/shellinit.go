package main

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/shellenv"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/ui"
)

type shellInitOptions struct {
	write  bool
	hook   bool
	fzfDir string
}

func newShellInitCmd() *cobra.Command {
	opts := &shellInitOptions{}

	cmd := &cobra.Command{
		Use:       "shell-init <bash|zsh>",
		Short:     "Print or install the fzf shell fragment",
		ValidArgs: []string{string(shellenv.Bash), string(shellenv.Zsh)},
		Long: heredoc.Doc(`
			Print the fzf fragment for bash or zsh. The fragment adds the fzf bin
			directory to PATH once, loads completion in interactive shells and
			loads the key bindings.

			With --write the fragment is saved to ~/.fzf.<shell> and the change is
			shown as a diff. With --hook a line sourcing it is added to the shell
			rc file if missing.
		`),
		Example: heredoc.Doc(`
			eval "$(dsetup shell-init bash)"
			dsetup shell-init zsh --write --hook
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShellInit(cmd, args[0], xdg.Home, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write the fragment to ~/.fzf.<shell>")
	cmd.Flags().BoolVar(&opts.hook, "hook", false, "Source the fragment from the shell rc file")
	cmd.Flags().StringVar(&opts.fzfDir, "fzf-dir", "", "fzf checkout directory (default from config)")

	return cmd
}

func runShellInit(cmd *cobra.Command, name, home string, opts *shellInitOptions) error {
	out := cmd.OutOrStdout()

	shell, err := shellenv.ParseShell(name)
	if err != nil {
		return err
	}

	dir := opts.fzfDir
	if dir == "" {
		cfg, err := globalconfig.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dir = cfg.Fzf.Dir
	}

	content, err := shellenv.Render(shell, dir)
	if err != nil {
		return err
	}

	if !opts.write && !opts.hook {
		fmt.Fprint(out, content)
		return nil
	}

	fragmentPath := shellenv.FragmentPath(home, shell)

	if opts.write {
		result, err := shellenv.Write(fragmentPath, content)
		if err != nil {
			return err
		}
		if result.Changed {
			fmt.Fprint(out, result.Diff)
			fmt.Fprintf(out, "%s Wrote %s\n", ui.SuccessStyle.Render(ui.IconOK), fragmentPath)
		} else {
			fmt.Fprintf(out, "%s %s is up to date\n", ui.DimStyle.Render(ui.IconSkip), fragmentPath)
		}
	}

	if opts.hook {
		rcPath := shellenv.RCPath(home, shell)
		changed, err := shellenv.Hook(rcPath, fragmentPath)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(out, "%s Added %s to %s\n", ui.SuccessStyle.Render(ui.IconOK), fragmentPath, rcPath)
		} else {
			fmt.Fprintf(out, "%s %s already sources %s\n", ui.DimStyle.Render(ui.IconSkip), rcPath, fragmentPath)
		}
	}

	return nil
}
