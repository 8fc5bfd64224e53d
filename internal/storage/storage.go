package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const historyFile = "runs.json"

// Run is the outcome of one driver run
type Run struct {
	Driver    string    `json:"driver"`
	Workbook  string    `json:"workbook,omitempty"`
	Finished  time.Time `json:"finished"`
	Documents int       `json:"documents"`
	Skipped   []string  `json:"skipped,omitempty"`
	Added     int       `json:"added"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
}

// OK reports whether the run wrote its workbook
func (r *Run) OK() bool {
	return r.Error == ""
}

// History holds the latest run of every driver
type History struct {
	UpdatedAt string          `json:"updated_at"`
	Runs      map[string]*Run `json:"runs"`
	// LastSuccess keeps the newest successful run per driver so a failed run
	// does not hide when the workbook was last refreshed
	LastSuccess map[string]*Run `json:"last_success,omitempty"`
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{
		Runs:        make(map[string]*Run),
		LastSuccess: make(map[string]*Run),
	}
}

// Add records a run, replacing the driver's previous entry
func (h *History) Add(run *Run) {
	h.Runs[run.Driver] = run
	if run.OK() {
		h.LastSuccess[run.Driver] = run
	}
}

// Drivers returns the recorded driver keys in order
func (h *History) Drivers() []string {
	keys := make([]string, 0, len(h.Runs))
	for k := range h.Runs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Storage handles persistence of the run history
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Path returns the history file location
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, historyFile)
}

// Load reads the history from disk. A missing file is an empty history.
func (s *Storage) Load() (*History, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewHistory(), nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var history History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}

	// Ensure maps are initialized
	if history.Runs == nil {
		history.Runs = make(map[string]*Run)
	}
	if history.LastSuccess == nil {
		history.LastSuccess = make(map[string]*Run)
	}

	return &history, nil
}

// Save writes the history to disk
func (s *Storage) Save(history *History) error {
	history.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}

// Record merges runs into the stored history and saves it
func (s *Storage) Record(runs ...*Run) error {
	history, err := s.Load()
	if err != nil {
		return err
	}
	for _, r := range runs {
		history.Add(r)
	}
	return s.Save(history)
}
