// Package history persists provision reports so past runs can be listed.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/globalconfig"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/logging"
	"github.com/jaspreet-dot-casa/desktop-setup/pkg/provision"
)

const (
	// MaxRuns is the number of reports kept; older ones are evicted on save.
	MaxRuns = 50

	reportExt = ".yaml"
)

// ErrNotFound is returned when no report matches an ID.
var ErrNotFound = errors.New("run not found")

// Store manages report files in a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store in the XDG state directory.
func NewStore() *Store {
	return &Store{dir: globalconfig.GetRunsDir()}
}

// NewStoreWithDir creates a store with a custom directory.
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory reports are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a report and evicts the oldest beyond MaxRuns.
func (s *Store) Save(report *provision.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == "" {
		return "", fmt.Errorf("report has no ID")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(s.dir, report.ID+reportExt)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := s.enforceLimit(); err != nil {
		logger := logging.GetLogger("history")
		logger.Warn().Err(err).Msg("Failed to evict old reports")
	}

	return path, nil
}

// List returns all stored reports, newest first.
func (s *Store) List() ([]*provision.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

// Load returns the report whose ID starts with prefix. The prefix must be
// unambiguous.
func (s *Store) Load(prefix string) (*provision.Report, error) {
	reports, err := s.List()
	if err != nil {
		return nil, err
	}

	var match *provision.Report
	for _, r := range reports {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run ID %q is ambiguous", prefix)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

func (s *Store) list() ([]*provision.Report, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	logger := logging.GetLogger("history")
	var reports []*provision.Report
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != reportExt {
			continue
		}
		r, err := readReport(filepath.Join(s.dir, e.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable report")
			continue
		}
		reports = append(reports, r)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	return reports, nil
}

func (s *Store) enforceLimit() error {
	reports, err := s.list()
	if err != nil {
		return err
	}
	if len(reports) <= MaxRuns {
		return nil
	}
	for _, r := range reports[MaxRuns:] {
		if err := os.Remove(filepath.Join(s.dir, r.ID+reportExt)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func readReport(path string) (*provision.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r provision.Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &r, nil
}
