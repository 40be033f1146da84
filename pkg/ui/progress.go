package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/download"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
)

type downloadProgressMsg struct {
	downloaded int64
	total      int64
}

type downloadDoneMsg struct {
	err error
}

// downloadModel shows a progress bar while one file downloads.
type downloadModel struct {
	label      string
	bar        progress.Model
	events     chan tea.Msg
	start      func() error
	cancel     context.CancelFunc
	downloaded int64
	total      int64
	err        error
	done       bool
}

func newDownloadModel(label string, start func(chan<- tea.Msg) error, cancel context.CancelFunc) downloadModel {
	events := make(chan tea.Msg, 64)
	return downloadModel{
		label: label,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		events: events,
		start:  func() error { return start(events) },
		cancel: cancel,
		total:  -1,
	}
}

func (m downloadModel) Init() tea.Cmd {
	return tea.Batch(m.run(), m.waitForProgress())
}

func (m downloadModel) run() tea.Cmd {
	return func() tea.Msg {
		m.events <- downloadDoneMsg{err: m.start()}
		return nil
	}
}

func (m downloadModel) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
		}
		return m, nil

	case downloadProgressMsg:
		m.downloaded = msg.downloaded
		m.total = msg.total
		return m, m.waitForProgress()

	case downloadDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m downloadModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("%s %s %s\n", ErrorStyle.Render(IconFail), m.label, DimStyle.Render(m.err.Error()))
		}
		return fmt.Sprintf("%s %s %s\n", SuccessStyle.Render(IconOK), m.label, DimStyle.Render(formatBytes(m.downloaded)))
	}

	if m.total <= 0 {
		return fmt.Sprintf("  %s %s\n", m.label, DimStyle.Render(formatBytes(m.downloaded)))
	}
	percent := float64(m.downloaded) / float64(m.total)
	return fmt.Sprintf("  %s %s %s\n", m.label, m.bar.ViewAs(percent),
		DimStyle.Render(fmt.Sprintf("%s / %s", formatBytes(m.downloaded), formatBytes(m.total))))
}

// ProgressFetcher downloads with a progress bar on a terminal.
type ProgressFetcher struct {
	Downloader *download.Downloader
	In         io.Reader
	Out        io.Writer
}

// Fetch implements provision.Fetcher.
func (f *ProgressFetcher) Fetch(ctx context.Context, label string, opts download.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := func(events chan<- tea.Msg) error {
		opts.OnProgress = func(downloaded, total int64) {
			select {
			case events <- downloadProgressMsg{downloaded: downloaded, total: total}:
			default:
			}
		}
		return f.Downloader.Download(ctx, opts)
	}

	m := newDownloadModel(label, start, cancel)
	p := tea.NewProgram(m, tea.WithInput(f.In), tea.WithOutput(f.Out), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}
	return result.(downloadModel).err
}

// NewFetcher returns a ProgressFetcher when out is a terminal and a
// provision.DirectFetcher otherwise.
func NewFetcher(in io.Reader, out io.Writer, dl *download.Downloader) provision.Fetcher {
	if IsTerminal(out) {
		return &ProgressFetcher{Downloader: dl, In: in, Out: out}
	}
	return &provision.DirectFetcher{Downloader: dl}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
