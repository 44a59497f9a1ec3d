package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the colacheck home directory.
	DefaultDirName = ".colacheck"

	// DocumentsDirName is the subdirectory for uploaded document copies.
	DocumentsDirName = "documents"

	// ExportsDirName is the subdirectory for exported reports.
	ExportsDirName = "exports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the colacheck home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.colacheck).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DocumentsPath returns the path to the documents directory.
func (d *Dir) DocumentsPath() string {
	return filepath.Join(d.path, DocumentsDirName)
}

// DocumentPath returns the on-disk path for an uploaded document copy.
func (d *Dir) DocumentPath(recordID, fileName string) string {
	return filepath.Join(d.DocumentsPath(), recordID+"_"+fileName)
}

// ExportsPath returns the path to the exports directory.
func (d *Dir) ExportsPath() string {
	return filepath.Join(d.path, ExportsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DocumentsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create documents directory: %w", err)
	}
	if err := os.MkdirAll(d.ExportsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// SaveDocument writes an uploaded payload under the documents directory so a
// batch can be re-run after a restart.
func (d *Dir) SaveDocument(recordID, fileName string, payload []byte) (string, error) {
	if err := os.MkdirAll(d.DocumentsPath(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create documents directory: %w", err)
	}
	path := d.DocumentPath(recordID, fileName)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document copy: %w", err)
	}
	return path, nil
}
