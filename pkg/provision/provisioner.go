// Package provision turns a manifest into an ordered plan of package-manager
// invocations and runs it once, top to bottom.
package provision

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/download"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/manifest"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/platform"
)

// Default apt locations for signed repositories.
const (
	DefaultKeyringDir = "/etc/apt/keyrings"
	DefaultSourcesDir = "/etc/apt/sources.list.d"
)

// Fetcher downloads one file. label names the download for progress output.
type Fetcher interface {
	Fetch(ctx context.Context, label string, opts download.Options) error
}

// DirectFetcher downloads without any progress display.
type DirectFetcher struct {
	Downloader *download.Downloader
}

// Fetch downloads opts.URL to opts.DestPath.
func (f *DirectFetcher) Fetch(ctx context.Context, _ string, opts download.Options) error {
	return f.Downloader.Download(ctx, opts)
}

// Options configures a Provisioner.
type Options struct {
	// Runner executes read-only queries (dpkg-query, flatpak list, snap list).
	Runner executor.Runner
	// Privileged executes installs and system changes. Defaults to Runner.
	Privileged executor.Runner
	// Fetcher downloads keys and .deb files. Defaults to a DirectFetcher.
	Fetcher Fetcher
	// Platform supplies the codename and architecture for sources entries.
	Platform *platform.Info
	// CacheDir holds downloaded and staged files.
	CacheDir   string
	KeyringDir string
	SourcesDir string
	// Out receives "already installed" notices.
	Out io.Writer
}

// RunOptions configures one run.
type RunOptions struct {
	ManifestName string
	DryRun       bool
	// OnItem, if set, is called with each item as it is recorded.
	OnItem func(ItemResult)
}

// Provisioner plans and runs manifests.
type Provisioner struct {
	runner     executor.Runner
	privileged executor.Runner
	fetcher    Fetcher
	platform   *platform.Info
	cacheDir   string
	keyringDir string
	sourcesDir string
	out        io.Writer

	// reposChanged is set when a repository step modified apt sources.
	reposChanged bool
}

// New creates a Provisioner.
func New(opts Options) *Provisioner {
	p := &Provisioner{
		runner:     opts.Runner,
		privileged: opts.Privileged,
		fetcher:    opts.Fetcher,
		platform:   opts.Platform,
		cacheDir:   opts.CacheDir,
		keyringDir: opts.KeyringDir,
		sourcesDir: opts.SourcesDir,
		out:        opts.Out,
	}
	if p.privileged == nil {
		p.privileged = p.runner
	}
	if p.fetcher == nil {
		p.fetcher = &DirectFetcher{Downloader: download.NewDownloader()}
	}
	// apt-get only treats an argument as a local .deb when it is a path.
	if p.cacheDir != "" {
		if abs, err := filepath.Abs(p.cacheDir); err == nil {
			p.cacheDir = abs
		}
	}
	if p.keyringDir == "" {
		p.keyringDir = DefaultKeyringDir
	}
	if p.sourcesDir == "" {
		p.sourcesDir = DefaultSourcesDir
	}
	if p.out == nil {
		p.out = io.Discard
	}
	return p
}

// Plan compiles a manifest into its ordered steps.
func (p *Provisioner) Plan(m *manifest.Manifest) ([]Step, error) {
	var steps []Step

	if !m.SkipUpdate {
		steps = append(steps, p.aptGet(PhaseUpdate, "apt update", "update"))
	}

	for _, repo := range m.Repositories {
		if repo.IsPPA() {
			steps = append(steps, &ppaStep{p: p, repo: repo})
		} else {
			steps = append(steps, &signedRepoStep{p: p, repo: repo})
		}
	}
	if len(m.Repositories) > 0 {
		update := p.aptGet(PhaseUpdate, "apt update (repositories)", "update")
		update.when = func() (bool, string) {
			if p.reposChanged {
				return true, ""
			}
			return false, "no repository changed"
		}
		steps = append(steps, update)
	}

	for _, dl := range m.Downloads {
		steps = append(steps, &downloadStep{p: p, dl: dl})
	}

	for _, source := range manifest.Sources {
		pkgs := m.BySource(source)
		if len(pkgs) == 0 {
			continue
		}
		if source == manifest.SourceFlatpak {
			for _, remote := range m.FlatpakRemotes {
				steps = append(steps, &commandStep{
					phase:  PhaseRepository,
					name:   "flatpak remote " + remote.Name,
					runner: p.privileged,
					cmd:    "flatpak",
					args:   []string{"remote-add", "--if-not-exists", remote.Name, remote.URL},
				})
			}
		}
		backend, err := NewBackend(source, p.runner)
		if err != nil {
			return nil, err
		}
		steps = append(steps, &installStep{p: p, backend: backend, pkgs: pkgs})
	}

	if len(m.Remove) > 0 {
		steps = append(steps, &removeStep{p: p, names: m.Remove})
	}

	if !m.SkipCleanup {
		steps = append(steps,
			p.aptGet(PhaseCleanup, "apt autoremove", "autoremove", "-y"),
			p.aptGet(PhaseCleanup, "apt clean", "clean"),
		)
	}

	return steps, nil
}

// Run executes the manifest and returns the report. The returned error is only
// for plans that could not be built; command failures are in the report.
func (p *Provisioner) Run(ctx context.Context, m *manifest.Manifest, opts RunOptions) (*Report, error) {
	if m.IsEmpty() {
		return nil, manifest.ErrEmpty
	}

	steps, err := p.Plan(m)
	if err != nil {
		return nil, err
	}

	report := NewReport(opts.ManifestName, opts.DryRun)
	logger := logging.GetLogger("provision").With().Str("run", report.ID).Logger()
	done := logging.LogOperationStart(logger, "provision")
	defer done()

	p.reposChanged = false
	for _, step := range steps {
		if opts.DryRun {
			for _, line := range step.Describe() {
				record(report, opts, ItemResult{Phase: step.Phase(), Name: line, Status: StatusPlanned})
			}
			continue
		}
		for _, r := range step.Execute(ctx) {
			if r.Status == StatusFailed {
				logger.Error().Str("phase", string(r.Phase)).Str("item", r.Name).Msg(r.Message)
			}
			record(report, opts, r)
		}
	}

	report.Finish()
	return report, nil
}

func record(report *Report, opts RunOptions, item ItemResult) {
	report.Add(item)
	if opts.OnItem != nil {
		opts.OnItem(item)
	}
}

func (p *Provisioner) aptGet(phase Phase, name string, args ...string) *commandStep {
	return &commandStep{
		phase:  phase,
		name:   name,
		runner: p.privileged,
		cmd:    "apt-get",
		args:   args,
	}
}

func (p *Provisioner) aptInventory(ctx context.Context) (Inventory, error) {
	return (&AptBackend{runner: p.runner}).Inventory(ctx)
}

// renderLine substitutes {{codename}}, {{arch}} and {{keyring}} in a sources entry.
func (p *Provisioner) renderLine(line, keyring string) (string, error) {
	if strings.Contains(line, "{{codename}}") {
		if p.platform == nil || p.platform.Codename == "" {
			return "", fmt.Errorf("sources entry needs {{codename}} but the distribution codename is unknown")
		}
		line = strings.ReplaceAll(line, "{{codename}}", p.platform.Codename)
	}
	arch := platform.DebianArch(runtime.GOARCH)
	if p.platform != nil && p.platform.Arch != "" {
		arch = p.platform.Arch
	}
	line = strings.ReplaceAll(line, "{{arch}}", arch)
	line = strings.ReplaceAll(line, "{{keyring}}", filepath.Clean(keyring))
	return line, nil
}
