package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ArtifactStore persists stage artifacts for one run.
type ArtifactStore interface {
	// Save writes a stage artifact and returns its path.
	Save(runID string, stage Stage, v any) (string, error)
	// Load reads a stage artifact into v. A missing or malformed
	// artifact reports fs.ErrNotExist.
	Load(runID string, stage Stage, v any) error
}

// FileStore writes artifacts as indented JSON under
// <root>/runs/<run-id>/<nn>-<stage>.json. Identical inputs always
// produce byte-identical files: no timestamps or run IDs appear inside
// an artifact, only in the path.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (f *FileStore) path(runID string, stage Stage) string {
	name := fmt.Sprintf("%02d-%s.json", StageIndexOf(stage)+1, stage)
	return filepath.Join(f.root, "runs", runID, name)
}

// Save writes the artifact, creating the run directory if needed.
func (f *FileStore) Save(runID string, stage Stage, v any) (string, error) {
	path := f.path(runID, stage)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("pipeline: create run dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("pipeline: marshal %s artifact: %w", stage, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("pipeline: write %s artifact: %w", stage, err)
	}
	return path, nil
}

// Load reads the artifact back. Malformed JSON is treated the same as a
// missing file so a half-written artifact never passes for a stage
// output.
func (f *FileStore) Load(runID string, stage Stage, v any) error {
	data, err := os.ReadFile(f.path(runID, stage))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("pipeline: %s artifact for run %s: %w", stage, runID, fs.ErrNotExist)
		}
		return fmt.Errorf("pipeline: read %s artifact: %w", stage, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("pipeline: %s artifact for run %s is malformed: %w", stage, runID, fs.ErrNotExist)
	}
	return nil
}
