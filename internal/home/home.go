// Package home manages the studydeck home directory layout
// (~/.studydeck by default): uploaded documents, extracted text, and
// generated study sets live under it.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the studydeck home directory.
	DefaultDirName = ".studydeck"

	// DocumentsDirName is the subdirectory for uploaded source documents.
	DocumentsDirName = "documents"

	// StudySetsDirName is the subdirectory for generated study sets.
	StudySetsDirName = "studysets"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the studydeck home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.studydeck).
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

// StudySetsPath returns the path to the study sets directory.
func (d *Dir) StudySetsPath() string {
	return filepath.Join(d.path, StudySetsDirName)
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
	if err := os.MkdirAll(d.StudySetsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create studysets directory: %w", err)
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

// DocumentDir returns the directory holding one uploaded document.
func (d *Dir) DocumentDir(docID string) string {
	return filepath.Join(d.DocumentsPath(), docID)
}

// OriginalPath returns the stored original file for a document.
// ext must include the leading dot (".pdf", ".md").
func (d *Dir) OriginalPath(docID, ext string) string {
	return filepath.Join(d.DocumentDir(docID), "original"+ext)
}

// ExtractedTextPath returns the cleaned extracted text file for a document.
func (d *Dir) ExtractedTextPath(docID string) string {
	return filepath.Join(d.DocumentDir(docID), "extracted.txt")
}

// DocumentMetaPath returns the metadata file for a document.
func (d *Dir) DocumentMetaPath(docID string) string {
	return filepath.Join(d.DocumentDir(docID), "document.json")
}

// EnsureDocumentDir creates the directory for a document.
func (d *Dir) EnsureDocumentDir(docID string) error {
	return os.MkdirAll(d.DocumentDir(docID), 0o755)
}

// StudySetPath returns the file holding a generated study set.
func (d *Dir) StudySetPath(setID string) string {
	return filepath.Join(d.StudySetsPath(), setID+".json")
}
