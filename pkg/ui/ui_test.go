package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/doctor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/download"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/validation"
)

func sampleReport() *provision.Report {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return &provision.Report{
		ID:         "0123456789abcdef",
		Manifest:   "desktop.yaml",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Items: []provision.ItemResult{
			{Phase: provision.PhaseUpdate, Name: "apt update", Status: provision.StatusSucceeded},
			{Phase: provision.PhaseInstall, Name: "git", Status: provision.StatusSkipped, Message: "already installed"},
			{
				Phase:  provision.PhaseInstall,
				Name:   "vlc",
				Status: provision.StatusFailed,
				Command: &executor.Result{
					Command:  "apt-get",
					ExitCode: 100,
					Stderr:   "Reading package lists...\nE: Unable to locate package vlc",
				},
			},
		},
	}
}

func TestFormatItem(t *testing.T) {
	report := sampleReport()

	assert.Contains(t, FormatItem(report.Items[0]), "apt update")
	assert.Contains(t, FormatItem(report.Items[1]), "(already installed)")

	failed := FormatItem(report.Items[2])
	assert.Contains(t, failed, "vlc")
	assert.Contains(t, failed, "exit 100: E: Unable to locate package vlc")
	assert.NotContains(t, failed, "Reading package lists")

	noCommand := FormatItem(provision.ItemResult{Phase: provision.PhaseDownload, Name: "chrome", Status: provision.StatusFailed, Message: "download failed: HTTP 404"})
	assert.Contains(t, noCommand, "download failed: HTTP 404")
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	RenderReport(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "Provision report")
	assert.Contains(t, out, "1 succeeded")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "42s")
	assert.Contains(t, out, "run 0123456789abcdef")
}

func TestRenderReport_DryRun(t *testing.T) {
	report := &provision.Report{
		DryRun: true,
		Items: []provision.ItemResult{
			{Phase: provision.PhaseUpdate, Name: "apt-get update", Status: provision.StatusPlanned},
		},
	}

	var buf bytes.Buffer
	RenderReport(&buf, report)
	assert.Contains(t, buf.String(), "dry run")
	assert.Contains(t, buf.String(), "1 planned steps")
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, nil)
	assert.Contains(t, buf.String(), "No provision runs")

	buf.Reset()
	RenderHistory(&buf, []*provision.Report{sampleReport()})
	assert.Contains(t, buf.String(), "01234567 ")
	assert.Contains(t, buf.String(), "desktop.yaml")
	assert.Contains(t, buf.String(), "1 ok / 1 skipped / 1 failed")
}

func TestRenderValidation(t *testing.T) {
	var buf bytes.Buffer
	RenderValidation(&buf, &validation.Result{})
	assert.Contains(t, buf.String(), "manifest is valid")

	buf.Reset()
	RenderValidation(&buf, &validation.Result{Issues: []validation.Issue{
		{File: "m.yaml", Field: "packages[0].name", Message: "invalid package name", Severity: validation.SeverityError},
		{File: "m.yaml", Message: "duplicate", Severity: validation.SeverityWarning},
	}})
	assert.Contains(t, buf.String(), "m.yaml: packages[0].name")
	assert.Contains(t, buf.String(), "1 error(s), 1 warning(s)")
}

func TestRenderDoctor(t *testing.T) {
	groups := []doctor.CheckGroup{{
		Name: "Snap",
		Checks: []doctor.Check{
			{Name: "Snap", Status: doctor.StatusMissing, Message: "not installed", FixCommand: doctor.GetFixCommand(doctor.IDSnap)},
		},
	}}

	var buf bytes.Buffer
	RenderDoctor(&buf, groups)
	assert.Contains(t, buf.String(), "fix: sudo apt-get install -y snapd")
	assert.Contains(t, buf.String(), "0 ok, 1 missing")
}

func TestConfirmModel(t *testing.T) {
	m := confirmModel{question: "Continue?"}
	assert.Contains(t, m.View(), "[y/N]")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.NotNil(t, cmd)
	assert.True(t, updated.(confirmModel).confirmed)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, updated.(confirmModel).confirmed)
	assert.True(t, updated.(confirmModel).done)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, updated.(confirmModel).done)
}

func TestDownloadModel(t *testing.T) {
	cancelled := false
	m := newDownloadModel("chrome.deb", func(chan<- tea.Msg) error { return nil }, func() { cancelled = true })

	updated, cmd := m.Update(downloadProgressMsg{downloaded: 512, total: 1024})
	require.NotNil(t, cmd)
	m = updated.(downloadModel)
	assert.Contains(t, m.View(), "512 B / 1.0 KiB")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(downloadModel)
	assert.True(t, cancelled)

	updated, cmd = m.Update(downloadDoneMsg{err: errors.New("context canceled")})
	require.NotNil(t, cmd)
	m = updated.(downloadModel)
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "context canceled")
}

func TestNewFetcher_NotATerminal(t *testing.T) {
	f := NewFetcher(nil, &bytes.Buffer{}, download.NewDownloader())
	assert.IsType(t, &provision.DirectFetcher{}, f)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "999 B", formatBytes(999))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2*1024*1024))
}
