package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Store reads and writes the calendar artifact as a JSON file. Writes go to
// a temp file in the same directory followed by a rename, so readers never
// observe a partially written calendar.
type Store struct {
	path string
}

// NewStore creates a store for the named calendar file under dir.
func NewStore(dir, name string) *Store {
	return &Store{path: filepath.Join(dir, name)}
}

// Path returns the artifact's location on disk.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether an artifact has been published.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save atomically replaces the published calendar.
func (s *Store) Save(cal *Calendar) error {
	return writeJSONAtomic(s.path, cal)
}

// Load reads the published calendar.
func (s *Store) Load() (*Calendar, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read calendar artifact: %w", err)
	}

	var cal Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("decode calendar artifact: %w", err)
	}

	return &cal, nil
}

// Slot returns the published slot for a day-of-year, if present.
func (c *Calendar) Slot(day int) (Slot, bool) {
	slot, ok := c.CalendarByDayOfYear[strconv.Itoa(day)]
	return slot, ok
}

// writeJSONAtomic writes v as JSON via a temp file and rename.
func writeJSONAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	data, err := json.Marshal(v)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode artifact: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}

	return nil
}
