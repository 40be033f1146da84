package doctor

import (
	"context"
	"os"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/platform"
)

// Checker provides dependency checking functionality.
type Checker struct {
	runner        executor.Runner
	editor        string
	fzfDir        string
	osReleasePath string
	fileExists    func(path string) bool
}

// Options configures a Checker.
type Options struct {
	Editor        string // Editor used by the scaffolder
	FzfDir        string // fzf checkout the shell fragments source
	OSReleasePath string // Defaults to /etc/os-release
}

// NewChecker creates a new Checker with the real command runner.
func NewChecker(opts Options) *Checker {
	return NewCheckerWithRunner(&executor.RealRunner{}, opts)
}

// NewCheckerWithRunner creates a new Checker with a custom runner (for testing).
func NewCheckerWithRunner(runner executor.Runner, opts Options) *Checker {
	if opts.OSReleasePath == "" {
		opts.OSReleasePath = platform.OSReleasePath
	}
	return &Checker{
		runner:        runner,
		editor:        opts.Editor,
		fzfDir:        opts.FzfDir,
		osReleasePath: opts.OSReleasePath,
		fileExists:    fileExists,
	}
}

// CheckAll runs the groups a manifest needs, or every group when m is nil.
func (c *Checker) CheckAll(ctx context.Context, m *manifest.Manifest) []CheckGroup {
	var result []CheckGroup
	for _, id := range GroupsFor(m) {
		result = append(result, c.CheckGroup(ctx, id))
	}
	return result
}

// CheckGroup runs all checks for a specific group.
func (c *Checker) CheckGroup(ctx context.Context, groupID string) CheckGroup {
	def, ok := GetGroupDefinition(groupID)
	if !ok {
		return CheckGroup{
			ID:   groupID,
			Name: "Unknown",
		}
	}

	group := CheckGroup{
		ID:          groupID,
		Name:        def.Name,
		Description: def.Description,
	}

	for _, checkID := range def.CheckIDs {
		group.Checks = append(group.Checks, c.runCheck(ctx, checkID))
	}

	return group
}

// runCheck runs a specific check by ID.
func (c *Checker) runCheck(ctx context.Context, checkID string) Check {
	switch checkID {
	case IDOSRelease:
		return CheckOSRelease(c.osReleasePath)
	case IDAptGet:
		return CheckAptGet(ctx, c.runner)
	case IDDpkgQuery:
		return CheckDpkgQuery(ctx, c.runner)
	case IDAddAptRepository:
		return CheckAddAptRepository(ctx, c.runner)
	case IDGpg:
		return CheckGpg(ctx, c.runner)
	case IDFlatpak:
		return CheckFlatpak(ctx, c.runner)
	case IDFlathub:
		return CheckFlathub(ctx, c.runner)
	case IDSnap:
		return CheckSnap(ctx, c.runner)
	case IDEditor:
		return CheckEditor(c.runner, c.editor)
	case IDFzf:
		return CheckFzf(c.fileExists, c.fzfDir)
	default:
		return Check{
			ID:      checkID,
			Name:    checkID,
			Status:  StatusError,
			Message: "unknown check",
		}
	}
}

// GetCheck runs a single check by ID.
func (c *Checker) GetCheck(ctx context.Context, checkID string) Check {
	return c.runCheck(ctx, checkID)
}

// Summary represents an overall health summary.
type Summary struct {
	Total    int
	OK       int
	Missing  int
	Warnings int
	Errors   int
}

// GetSummary returns a summary of check results.
func GetSummary(groups []CheckGroup) Summary {
	var summary Summary

	for _, group := range groups {
		for _, check := range group.Checks {
			summary.Total++
			switch check.Status {
			case StatusOK:
				summary.OK++
			case StatusMissing:
				summary.Missing++
			case StatusWarning:
				summary.Warnings++
			case StatusError:
				summary.Errors++
			}
		}
	}

	return summary
}

// HasIssues returns true if any checks have issues.
func HasIssues(groups []CheckGroup) bool {
	summary := GetSummary(groups)
	return summary.Missing > 0 || summary.Errors > 0
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
