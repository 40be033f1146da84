package shellenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShell(t *testing.T) {
	sh, err := ParseShell("zsh")
	require.NoError(t, err)
	assert.Equal(t, Zsh, sh)

	_, err = ParseShell("fish")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	tests := []struct {
		shell Shell
	}{
		{Bash},
		{Zsh},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			out, err := Render(tt.shell, "/home/me/.fzf")
			require.NoError(t, err)

			assert.Contains(t, out, `if [[ ! "$PATH" == */home/me/.fzf/bin* ]]; then`)
			assert.Contains(t, out, `PATH="/home/me/.fzf/bin${PATH:+:${PATH}}"`)
			assert.Contains(t, out, `[[ $- == *i* ]] && source "/home/me/.fzf/shell/completion.`+string(tt.shell)+`"`)
			assert.Contains(t, out, `source "/home/me/.fzf/shell/key-bindings.`+string(tt.shell)+`"`)
		})
	}
}

func TestRender_UnknownShell(t *testing.T) {
	_, err := Render(Shell("fish"), "/opt/fzf")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/me/.fzf.bash", FragmentPath("/home/me", Bash))
	assert.Equal(t, "/home/me/.zshrc", RCPath("/home/me", Zsh))
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fzf.bash")

	res, err := Write(path, "one\n")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = Write(path, "one\n")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Diff)

	res, err = Write(path, "two\n")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Contains(t, res.Diff, "-one")
	assert.Contains(t, res.Diff, "+two")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
}

func TestHook(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".bashrc")
	fragment := filepath.Join(dir, ".fzf.bash")
	require.NoError(t, os.WriteFile(rc, []byte("alias ll='ls -l'"), 0644))

	changed, err := Hook(rc, fragment)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Hook(rc, fragment)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), SourceLine(fragment)))
	assert.True(t, strings.HasPrefix(string(data), "alias ll='ls -l'\n"))
}

func TestHook_MissingRC(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".zshrc")

	changed, err := Hook(rc, filepath.Join(dir, ".fzf.zsh"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.FileExists(t, rc)
}

func TestHook_SymlinkedRC(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dotfiles-bashrc")
	rc := filepath.Join(dir, ".bashrc")
	fragment := filepath.Join(dir, ".fzf.bash")
	require.NoError(t, os.WriteFile(target, []byte("export A=1\n"), 0644))
	require.NoError(t, os.Symlink("dotfiles-bashrc", rc))

	changed, err := Hook(rc, fragment)
	require.NoError(t, err)
	assert.True(t, changed)

	info, err := os.Lstat(rc)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "rc is still a symlink")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "export A=1\n"+SourceLine(fragment)+"\n", string(data))

	changed, err = Hook(rc, fragment)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWrite_DanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dotfiles", "fzf.bash")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	path := filepath.Join(dir, ".fzf.bash")
	require.NoError(t, os.Symlink(target, path))

	res, err := Write(path, "one\n")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))
}
