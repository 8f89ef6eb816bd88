// Package file implements storage on JSON documents in a state directory.
// This is the default backend: one document for treasury state, one for
// cumulative metrics, one bounded array for the activity log. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// truncated document.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document file names inside the state directory.
const (
	stateFile    = "treasury_state.json"
	metricsFile  = "metrics.json"
	activityFile = "activity_log.json"
)

// Dir is a state directory holding the three JSON documents.
type Dir struct {
	path string
}

// Open ensures the directory exists and returns a handle to it.
func Open(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("state directory path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// readDoc unmarshals one document. Reports os.IsNotExist errors unchanged
// so stores can map them to storage.ErrNotFound.
func (d *Dir) readDoc(name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeDoc marshals and atomically replaces one document.
func (d *Dir) writeDoc(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	target := filepath.Join(d.path, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
