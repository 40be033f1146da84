package doctor

import (
	"context"
	"fmt"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
)

const fzfRepository = "https://github.com/junegunn/fzf.git"

func aptInstall(pkg string) *FixCommand {
	return &FixCommand{
		Description: "Install via apt",
		Command:     "apt-get",
		Args:        []string{"install", "-y", pkg},
		Sudo:        true,
	}
}

// fixCommands defines the fix command for each tool.
var fixCommands = map[string]*FixCommand{
	IDAddAptRepository: aptInstall("software-properties-common"),
	IDGpg:              aptInstall("gnupg"),
	IDFlatpak:          aptInstall("flatpak"),
	IDSnap:             aptInstall("snapd"),
	IDFlathub: {
		Description: "Add the Flathub remote",
		Command:     "flatpak",
		Args:        []string{"remote-add", "--if-not-exists", "flathub", "https://dl.flathub.org/repo/flathub.flatpakrepo"},
		Sudo:        true,
	},
}

// editorPackages maps editor commands to the apt package providing them.
var editorPackages = map[string]string{
	"vim":   "vim",
	"vi":    "vim",
	"nvim":  "neovim",
	"nano":  "nano",
	"emacs": "emacs",
	"micro": "micro",
}

// GetFixCommand returns the fix command for a tool.
func GetFixCommand(toolID string) *FixCommand {
	return fixCommands[toolID]
}

func editorFix(editor string) *FixCommand {
	pkg, ok := editorPackages[editor]
	if !ok {
		return nil
	}
	return aptInstall(pkg)
}

func fzfFix(dir string) *FixCommand {
	if dir == "" {
		return nil
	}
	return &FixCommand{
		Description: "Clone fzf",
		Command:     "git",
		Args:        []string{"clone", "--depth", "1", fzfRepository, dir},
	}
}

// Fixer provides functionality to run fix commands.
type Fixer struct {
	runner     executor.Runner
	privileged executor.Runner
}

// NewFixer creates a new Fixer. Sudo fixes go through privileged.
func NewFixer(runner, privileged executor.Runner) *Fixer {
	if privileged == nil {
		privileged = runner
	}
	return &Fixer{
		runner:     runner,
		privileged: privileged,
	}
}

// RunFix executes a fix command.
func (f *Fixer) RunFix(ctx context.Context, fix *FixCommand) error {
	if fix == nil {
		return fmt.Errorf("no fix command available")
	}

	runner := f.runner
	if fix.Sudo {
		runner = f.privileged
	}

	logger := logging.GetLogger("doctor")
	logging.LogCommand(logger, fix.Command, fix.Args)

	if _, err := executor.Check(ctx, runner, fix.Command, fix.Args...); err != nil {
		return fmt.Errorf("fix failed: %w", err)
	}
	return nil
}

// FixAll runs the fix of every missing check that has one. It continues past
// failures and returns the checks whose fix failed.
func (f *Fixer) FixAll(ctx context.Context, groups []CheckGroup) map[string]error {
	failed := make(map[string]error)
	done := make(map[string]bool)

	for _, group := range groups {
		for _, check := range group.Checks {
			if check.Status != StatusMissing || check.FixCommand == nil {
				continue
			}
			key := check.FixCommand.String()
			if done[key] {
				continue
			}
			done[key] = true

			if err := f.RunFix(ctx, check.FixCommand); err != nil {
				failed[check.ID] = err
			}
		}
	}
	return failed
}
