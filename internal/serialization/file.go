package serialization

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModelPath returns <dir>/<modelID>.dnet. modelID must be a plain file name.
func ModelPath(dir, modelID string) (string, error) {
	if modelID == "" || modelID == "." || strings.Contains(modelID, "..") || strings.ContainsAny(modelID, `/\`+"\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidModelID, modelID)
	}
	return filepath.Join(dir, modelID+Extension), nil
}

// Save writes m to path, creating parent directories. The file is written
// to a temporary name and renamed into place, so readers never observe a
// partial model.
func Save(path string, m *Model) error {
	blob, err := Marshal(m)
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := writeAtomic(path, blob); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

func writeAtomic(path string, blob []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op after a successful rename

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename model: %w", err)
	}
	return nil
}

// Load reads and decodes the model at path, checking it against exp.
func Load(path string, exp Expectation) (*Model, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	m, err := Unmarshal(blob, exp)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return m, nil
}
