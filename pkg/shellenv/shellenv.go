// Package shellenv renders the fzf shell fragments and hooks them into rc files.
package shellenv

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/aymanbagabas/go-udiff"
	"github.com/natefinch/atomic"
)

//go:embed fragments/*.tmpl
var fragments embed.FS

// Shell is a supported interactive shell.
type Shell string

const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
)

// ParseShell validates a shell name.
func ParseShell(name string) (Shell, error) {
	switch Shell(name) {
	case Bash, Zsh:
		return Shell(name), nil
	default:
		return "", fmt.Errorf("unsupported shell %q (use bash or zsh)", name)
	}
}

// FragmentPath returns where the fragment for shell lives, ~/.fzf.<shell>.
func FragmentPath(home string, shell Shell) string {
	return filepath.Join(home, ".fzf."+string(shell))
}

// RCPath returns the rc file the fragment is sourced from.
func RCPath(home string, shell Shell) string {
	return filepath.Join(home, "."+string(shell)+"rc")
}

// Render returns the fragment for shell with fzf installed in dir.
func Render(shell Shell, dir string) (string, error) {
	if _, err := ParseShell(string(shell)); err != nil {
		return "", err
	}
	tmpl, err := template.ParseFS(fragments, "fragments/fzf."+string(shell)+".tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to load fragment: %w", err)
	}

	var buf bytes.Buffer
	data := struct{ Dir, BinDir string }{Dir: dir, BinDir: filepath.Join(dir, "bin")}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render fragment: %w", err)
	}
	return buf.String(), nil
}

// WriteResult describes what Write did.
type WriteResult struct {
	Path    string
	Changed bool
	Diff    string // unified diff against the previous content
}

// Write atomically replaces path with content when it differs. A symlinked
// path keeps its link; the file it points to is replaced.
func Write(path, content string) (*WriteResult, error) {
	old, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result := &WriteResult{Path: path}
	if string(old) == content {
		return result, nil
	}

	result.Diff = udiff.Unified(path+" (current)", path+" (new)", string(old), content)
	if err := replaceFile(path, strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Changed = true
	return result, nil
}

// SourceLine returns the rc-file line that loads a fragment.
func SourceLine(fragmentPath string) string {
	return fmt.Sprintf("[ -f %q ] && source %q", fragmentPath, fragmentPath)
}

// Hook appends the source line for fragmentPath to rcPath unless it is
// already there. It reports whether the file was modified.
func Hook(rcPath, fragmentPath string) (bool, error) {
	line := SourceLine(fragmentPath)

	existing, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", rcPath, err)
	}
	for _, l := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(l) == line {
			return false, nil
		}
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(line + "\n")

	if err := replaceFile(rcPath, &buf); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", rcPath, err)
	}
	return true, nil
}

// maxLinks bounds symlink chains followed by resolveTarget.
const maxLinks = 40

// replaceFile atomically writes r to the file path refers to, following
// symlinks so a dotfiles-managed link survives.
func replaceFile(path string, r io.Reader) error {
	target, err := resolveTarget(path)
	if err != nil {
		return err
	}
	return atomic.WriteFile(target, r)
}

// resolveTarget follows symlinks from path. Unlike filepath.EvalSymlinks it
// accepts a link whose target does not exist yet.
func resolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	for i := 0; i < maxLinks; i++ {
		link, err := os.Readlink(path)
		if err != nil {
			return path, nil
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(path), link)
		}
		path = link
	}
	return "", fmt.Errorf("too many levels of symbolic links: %s", path)
}
