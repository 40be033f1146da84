// Package scaffold creates new executable shell scripts from a header template.
package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/executor"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
)

// Defaults written into every header unless the global config overrides them.
const (
	DefaultAuthor  = "author@example.com"
	DefaultLicense = "MIT"
	DefaultVersion = "0.1.0"
	DefaultEditor  = "vim"
)

// Fixed messages printed for the two guard failures.
const (
	UsageMessage  = "Usage: newscript <script-name>"
	ExistsMessage = "Error: file %s already exists"
)

const (
	// DateLayout is the header date format, YYYY-MM-DD.
	DateLayout = "2006-01-02"

	placeholderDescription = "<describe what this script does>"
)

var (
	// ErrUsage is returned when the argument count is not exactly one.
	ErrUsage = errors.New(UsageMessage)
	// ErrExists is returned when the target path already exists.
	ErrExists = errors.New("target already exists")
)

// Header holds the fields substituted into the header template.
type Header struct {
	Name        string
	Description string
	Version     string
	Author      string
	Date        string
	License     string
}

// Scaffolder writes new scripts and opens them in an editor.
type Scaffolder struct {
	Author  string
	License string
	Version string
	Editor  string

	// SkipEdit leaves the editor closed after writing.
	SkipEdit bool

	Runner executor.Runner
	Now    func() time.Time
}

// New creates a Scaffolder with the default header fields.
func New(runner executor.Runner) *Scaffolder {
	return &Scaffolder{
		Author:  DefaultAuthor,
		License: DefaultLicense,
		Version: DefaultVersion,
		Editor:  DefaultEditor,
		Runner:  runner,
		Now:     time.Now,
	}
}

// ExistsError reports the path that blocked scaffolding.
type ExistsError struct {
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf(ExistsMessage, e.Path)
}

func (e *ExistsError) Unwrap() error {
	return ErrExists
}

// Run scaffolds the single path in args. Guards run before anything is
// written, so a usage or exists error leaves the filesystem untouched.
func (s *Scaffolder) Run(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	path := args[0]

	if _, err := os.Lstat(path); err == nil {
		return "", &ExistsError{Path: path}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}

	content, err := s.Render(filepath.Base(path))
	if err != nil {
		return "", err
	}

	if err := writeExclusive(path, content); err != nil {
		return "", err
	}

	if err := MakeExecutable(path); err != nil {
		return path, err
	}

	logger := logging.GetLogger("scaffold")
	logger.Info().Str("path", path).Msg("Script created")

	if s.SkipEdit {
		return path, nil
	}
	return path, s.edit(ctx, path)
}

// Render returns the header for a script named name.
func (s *Scaffolder) Render(name string) (string, error) {
	tmpl, err := template.ParseFS(templates, headerTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to load header template: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	header := Header{
		Name:        name,
		Description: placeholderDescription,
		Version:     orDefault(s.Version, DefaultVersion),
		Author:      orDefault(s.Author, DefaultAuthor),
		Date:        now().Format(DateLayout),
		License:     orDefault(s.License, DefaultLicense),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, header); err != nil {
		return "", fmt.Errorf("failed to render header: %w", err)
	}
	return buf.String(), nil
}

// MakeExecutable adds execute permission for owner, group and other.
func MakeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.Chmod(path, info.Mode().Perm()|0111); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	return nil
}

func (s *Scaffolder) edit(ctx context.Context, path string) error {
	fields := strings.Fields(orDefault(s.Editor, DefaultEditor))
	args := append(fields[1:], path)

	logger := logging.GetLogger("scaffold")
	logging.LogCommand(logger, fields[0], args)

	if err := s.Runner.Interactive(ctx, fields[0], args...); err != nil {
		if errors.Is(err, executor.ErrCommandFailed) {
			return err
		}
		return executor.NewCommandError(executor.Result{Command: fields[0], Args: args, ExitCode: -1}, err)
	}
	return nil
}

// writeExclusive creates path and fails if something appeared there since
// the existence check.
func writeExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &ExistsError{Path: path}
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
