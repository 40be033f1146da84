package provision

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/download"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
)

// Step is one entry of a provisioning plan.
type Step interface {
	// Phase returns the phase the step belongs to.
	Phase() Phase
	// Describe returns the actions the step would take, for dry runs.
	Describe() []string
	// Execute performs the step. Failures are reported in the results,
	// never by stopping the run.
	Execute(ctx context.Context) []ItemResult
}

// commandStep runs a single command.
type commandStep struct {
	phase  Phase
	name   string
	runner executor.Runner
	cmd    string
	args   []string

	// when, if set, decides at execution time whether the step runs.
	when func() (bool, string)
}

func (s *commandStep) Phase() Phase { return s.phase }

func (s *commandStep) Describe() []string {
	return []string{executor.Result{Command: s.cmd, Args: s.args}.CommandLine()}
}

func (s *commandStep) Execute(ctx context.Context) []ItemResult {
	if s.when != nil {
		if ok, reason := s.when(); !ok {
			return []ItemResult{{Phase: s.phase, Name: s.name, Status: StatusSkipped, Message: reason}}
		}
	}
	logging.LogCommand(logging.GetLogger("runner"), s.cmd, s.args)
	result, err := executor.Check(ctx, s.runner, s.cmd, s.args...)
	return []ItemResult{commandItem(s.phase, s.name, result, err)}
}

// ppaStep adds a Launchpad PPA unless a sources file already references it.
type ppaStep struct {
	p    *Provisioner
	repo manifest.Repository
}

func (s *ppaStep) Phase() Phase { return PhaseRepository }

func (s *ppaStep) Describe() []string {
	return []string{"add-apt-repository -y " + s.repo.PPA}
}

func (s *ppaStep) Execute(ctx context.Context) []ItemResult {
	if ppaConfigured(s.p.sourcesDir, s.repo.PPA) {
		fmt.Fprintf(s.p.out, "%s is already configured\n", s.repo.Name)
		return []ItemResult{{Phase: PhaseRepository, Name: s.repo.Name, Status: StatusSkipped, Message: "already configured"}}
	}

	result, err := executor.Check(ctx, s.p.privileged, "add-apt-repository", "-y", s.repo.PPA)
	if err == nil {
		s.p.reposChanged = true
	}
	return []ItemResult{commandItem(PhaseRepository, s.repo.Name, result, err)}
}

// ppaConfigured scans sources files for the PPA's Launchpad path.
func ppaConfigured(sourcesDir, ppa string) bool {
	ppaPath := strings.TrimPrefix(ppa, "ppa:")
	entries, err := os.ReadDir(sourcesDir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(sourcesDir, entry.Name()))
		if err != nil {
			continue
		}
		content := string(data)
		if strings.Contains(content, "ppa.launchpadcontent.net/"+ppaPath+"/") ||
			strings.Contains(content, "ppa.launchpad.net/"+ppaPath+"/") {
			return true
		}
	}
	return false
}

// signedRepoStep installs a repository signing key and a sources entry.
type signedRepoStep struct {
	p    *Provisioner
	repo manifest.Repository
}

func (s *signedRepoStep) Phase() Phase { return PhaseRepository }

func (s *signedRepoStep) keyringPath() string {
	return filepath.Join(s.p.keyringDir, s.repo.Name+".gpg")
}

func (s *signedRepoStep) sourcesPath() string {
	return filepath.Join(s.p.sourcesDir, s.repo.Name+".list")
}

func (s *signedRepoStep) Describe() []string {
	line, err := s.p.renderLine(s.repo.Line, s.keyringPath())
	if err != nil {
		line = s.repo.Line
	}
	return []string{
		fmt.Sprintf("download %s", s.repo.KeyURL),
		fmt.Sprintf("gpg --dearmor -o %s", s.keyringPath()),
		fmt.Sprintf("write %s: %s", s.sourcesPath(), line),
	}
}

func (s *signedRepoStep) Execute(ctx context.Context) []ItemResult {
	fail := func(err error) []ItemResult {
		return []ItemResult{failedItem(PhaseRepository, s.repo.Name, err)}
	}

	line, err := s.p.renderLine(s.repo.Line, s.keyringPath())
	if err != nil {
		return fail(err)
	}
	content := []byte(line + "\n")

	if existing, err := os.ReadFile(s.sourcesPath()); err == nil && bytes.Equal(existing, content) {
		if _, err := os.Stat(s.keyringPath()); err == nil {
			fmt.Fprintf(s.p.out, "%s is already configured\n", s.repo.Name)
			return []ItemResult{{Phase: PhaseRepository, Name: s.repo.Name, Status: StatusSkipped, Message: "already configured"}}
		}
	}

	keyFile := filepath.Join(s.p.cacheDir, "keys", s.repo.Name+".asc")
	if err := s.p.fetcher.Fetch(ctx, s.repo.Name+" signing key", download.Options{URL: s.repo.KeyURL, DestPath: keyFile}); err != nil {
		return fail(fmt.Errorf("failed to download signing key: %w", err))
	}

	if result, err := executor.Check(ctx, s.p.privileged, "install", "-d", "-m", "0755", s.p.keyringDir); err != nil {
		return []ItemResult{commandItem(PhaseRepository, s.repo.Name, result, err)}
	}

	if result, err := executor.Check(ctx, s.p.privileged, "gpg", "--batch", "--yes", "--dearmor", "-o", s.keyringPath(), keyFile); err != nil {
		return []ItemResult{commandItem(PhaseRepository, s.repo.Name, result, err)}
	}

	staged := filepath.Join(s.p.cacheDir, "sources", s.repo.Name+".list")
	if err := os.MkdirAll(filepath.Dir(staged), 0755); err != nil {
		return fail(fmt.Errorf("failed to stage sources file: %w", err))
	}
	if err := os.WriteFile(staged, content, 0644); err != nil {
		return fail(fmt.Errorf("failed to stage sources file: %w", err))
	}

	result, err := executor.Check(ctx, s.p.privileged, "install", "-m", "0644", staged, s.sourcesPath())
	if err == nil {
		s.p.reposChanged = true
	}
	return []ItemResult{commandItem(PhaseRepository, s.repo.Name, result, err)}
}

// downloadStep fetches a .deb and installs it, unless the package it provides
// is already installed.
type downloadStep struct {
	p  *Provisioner
	dl manifest.Download
}

func (s *downloadStep) Phase() Phase { return PhaseDownload }

func (s *downloadStep) destPath() string {
	return filepath.Join(s.p.cacheDir, "debs", download.FileName(s.dl.URL, s.dl.Name))
}

func (s *downloadStep) Describe() []string {
	return []string{
		fmt.Sprintf("download %s", s.dl.URL),
		fmt.Sprintf("apt-get install -y %s", s.destPath()),
	}
}

func (s *downloadStep) Execute(ctx context.Context) []ItemResult {
	logger := logging.GetLogger("download")

	inv, err := s.p.aptInventory(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read installed packages")
	}
	if version, ok := inv.Version(s.dl.Name); ok {
		fmt.Fprintf(s.p.out, "%s is already installed\n", s.dl.Name)
		return []ItemResult{{Phase: PhaseDownload, Name: s.dl.Name, Status: StatusSkipped, Message: alreadyInstalledMessage(version)}}
	}

	dest := s.destPath()
	if download.Cached(dest, s.dl.SHA256) {
		logger.Info().Str("path", dest).Msg("Using cached download")
	} else {
		err := s.p.fetcher.Fetch(ctx, s.dl.Name, download.Options{
			URL:      s.dl.URL,
			DestPath: dest,
			SHA256:   s.dl.SHA256,
		})
		if err != nil {
			return []ItemResult{failedItem(PhaseDownload, s.dl.Name, err)}
		}
	}

	result, err := executor.Check(ctx, s.p.privileged, "apt-get", "install", "-y", dest)
	return []ItemResult{commandItem(PhaseDownload, s.dl.Name, result, err)}
}

// installStep runs the idempotent installer over one source's packages.
type installStep struct {
	p       *Provisioner
	backend Backend
	pkgs    []manifest.Package
}

func (s *installStep) Phase() Phase { return PhaseInstall }

func (s *installStep) Describe() []string {
	lines := make([]string, len(s.pkgs))
	for i, pkg := range s.pkgs {
		name, args := s.backend.InstallCommand(pkg)
		lines[i] = executor.Result{Command: name, Args: args}.CommandLine()
	}
	return lines
}

func (s *installStep) Execute(ctx context.Context) []ItemResult {
	results, err := NewInstaller(s.backend, s.p.privileged, s.p.out).Install(ctx, s.pkgs)
	if err != nil {
		return []ItemResult{failedItem(PhaseInstall, string(s.backend.Source()), err)}
	}
	return results
}

// removeStep removes the listed apt packages that are installed.
type removeStep struct {
	p     *Provisioner
	names []string
}

func (s *removeStep) Phase() Phase { return PhaseRemove }

func (s *removeStep) Describe() []string {
	return []string{"apt-get remove -y " + strings.Join(s.names, " ")}
}

func (s *removeStep) Execute(ctx context.Context) []ItemResult {
	logger := logging.GetLogger("remove")

	inv, err := s.p.aptInventory(ctx)
	if err != nil {
		// Without an inventory every name is removed; apt-get reports the
		// ones that are not installed.
		logger.Warn().Err(err).Msg("Could not read installed packages")
	}

	var present []string
	var results []ItemResult
	for _, name := range s.names {
		if err != nil || inv.Has(name) {
			present = append(present, name)
			continue
		}
		results = append(results, ItemResult{Phase: PhaseRemove, Name: name, Status: StatusSkipped, Message: "not installed"})
	}
	if len(present) == 0 {
		return results
	}

	args := append([]string{"remove", "-y"}, present...)
	result, err := executor.Check(ctx, s.p.privileged, "apt-get", args...)
	for _, name := range present {
		results = append(results, commandItem(PhaseRemove, name, result, err))
	}
	return results
}
