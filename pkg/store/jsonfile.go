package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
)

const (
	fileMode = 0600
	dirMode  = 0700
)

// JSONFile keeps the document in a single file on disk.
type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

// DefaultPath is ~/.budget_tracker/budget_data.json, or a file in the working
// directory when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "budget_data.json"
	}
	return filepath.Join(home, ".budget_tracker", "budget_data.json")
}

func (f *JSONFile) Path() string {
	return f.filename
}

func (f *JSONFile) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write goes to a temp file in the same directory which is then renamed over
// the target, so readers never see a half written file.
func (f *JSONFile) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.filename), dirMode); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return renameio.WriteFile(f.filename, data, fileMode)
}

// Backup copies the current file to <name>.bak-<timestamp>.
func (f *JSONFile) Backup(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.filename)
	if err != nil {
		return "", err
	}
	target := fmt.Sprintf("%s.bak-%s", f.filename, time.Now().Format("20060102T150405"))
	return target, renameio.WriteFile(target, data, fileMode)
}

func (f *JSONFile) Close() error {
	return nil
}
