package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
)

func newReport(id string, started time.Time) *provision.Report {
	return &provision.Report{
		ID:         id,
		Manifest:   "desktop.yaml",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Items: []provision.ItemResult{
			{Phase: provision.PhaseInstall, Name: "git", Status: provision.StatusSkipped, Message: "git is already installed"},
			{
				Phase:   provision.PhaseInstall,
				Name:    "vlc",
				Status:  provision.StatusFailed,
				Message: "external command failed",
				Command: &executor.Result{Command: "apt-get", Args: []string{"install", "-y", "vlc"}, ExitCode: 100, Stderr: "E: Unable to locate package vlc", Duration: 2 * time.Second},
			},
		},
	}
}

func TestStore_SaveAndList(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.Save(newReport("aaa-old", base))
	require.NoError(t, err)
	path, err := store.Save(newReport("bbb-new", base.Add(time.Hour)))
	require.NoError(t, err)
	assert.FileExists(t, path)

	reports, err := store.List()
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "bbb-new", reports[0].ID)
	assert.Equal(t, "aaa-old", reports[1].ID)

	got := reports[0]
	assert.Equal(t, 1, got.Summary().Failed)
	assert.Equal(t, 1, got.Summary().Skipped)
	require.NotNil(t, got.Items[1].Command)
	assert.Equal(t, 100, got.Items[1].Command.ExitCode)
	assert.Equal(t, 2*time.Second, got.Items[1].Command.Duration)
}

func TestStore_ListMissingDir(t *testing.T) {
	store := NewStoreWithDir(filepath.Join(t.TempDir(), "missing"))

	reports, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestStore_ListSkipsGarbage(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("items: [\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	_, err := store.Save(newReport("ok", time.Now()))
	require.NoError(t, err)

	reports, err := store.List()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "ok", reports[0].ID)
}

func TestStore_Load(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	now := time.Now()
	_, err := store.Save(newReport("abc123", now))
	require.NoError(t, err)
	_, err = store.Save(newReport("abd456", now.Add(time.Minute)))
	require.NoError(t, err)

	r, err := store.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", r.ID)

	_, err = store.Load("ab")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = store.Load("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_EvictsOldest(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(dir)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < MaxRuns+3; i++ {
		_, err := store.Save(newReport(fmt.Sprintf("run-%03d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	reports, err := store.List()
	require.NoError(t, err)
	assert.Len(t, reports, MaxRuns)
	assert.Equal(t, fmt.Sprintf("run-%03d", MaxRuns+2), reports[0].ID)
	assert.NoFileExists(t, filepath.Join(dir, "run-000.yaml"))
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	_, err := store.Save(&provision.Report{})
	assert.Error(t, err)
}
