package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/testutil"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func runNewscript(t *testing.T, runner executor.Runner, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, runner)
	return code, stdout.String(), stderr.String()
}

func TestRun_CreatesScriptAndOpensEditor(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "backup.sh")
	runner := testutil.NewMockRunner()

	code, _, stderr := runNewscript(t, runner, target)
	require.Equal(t, 0, code, stderr)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Script Name: backup.sh")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0111), info.Mode().Perm()&0111)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Interactive)
	assert.Equal(t, "vim", calls[0].Command)
	assert.Equal(t, []string{target}, calls[0].Args)
}

func TestRun_Usage(t *testing.T) {
	dir := setupEnv(t)
	chdir(t, dir)

	for _, args := range [][]string{nil, {"a.sh", "b.sh"}} {
		runner := testutil.NewMockRunner()
		code, _, stderr := runNewscript(t, runner, args...)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "Usage: newscript <script-name>")
		assert.Empty(t, runner.Calls())
	}

	assert.NoFileExists(t, filepath.Join(dir, "a.sh"))
}

func TestRun_Exists(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "taken.sh")
	require.NoError(t, os.WriteFile(target, []byte("keep me"), 0644))
	runner := testutil.NewMockRunner()

	code, _, stderr := runNewscript(t, runner, target)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: file "+target+" already exists")
	assert.Empty(t, runner.Calls())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
}

func TestRun_FlagLikeNameIsAFile(t *testing.T) {
	dir := setupEnv(t)
	chdir(t, dir)

	code, _, stderr := runNewscript(t, testutil.NewMockRunner(), "--help")
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "--help"))
}

func TestRun_EditorFailure(t *testing.T) {
	dir := setupEnv(t)
	target := filepath.Join(dir, "broken.sh")
	runner := testutil.NewMockRunner()
	runner.InteractiveFunc = func(string, ...string) error {
		return executor.ErrCommandFailed
	}

	code, _, stderr := runNewscript(t, runner, target)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
	assert.FileExists(t, target)
}

func TestRun_ConfigOverrides(t *testing.T) {
	dir := setupEnv(t)
	cfg := globalconfig.NewConfig()
	cfg.Scaffold.Author = "me@example.org"
	cfg.Scaffold.Editor = "nano"
	require.NoError(t, cfg.Save())

	target := filepath.Join(dir, "tool.sh")
	runner := testutil.NewMockRunner()

	code, _, stderr := runNewscript(t, runner, target)
	require.Equal(t, 0, code, stderr)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "me@example.org")
	assert.Equal(t, "nano", runner.Calls()[0].Command)
}
