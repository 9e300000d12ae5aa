package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/studydeck/studydeck/internal/home"
)

// Library is the in-memory document index. Files live under the home
// directory; the index is rebuilt from disk on startup.
type Library struct {
	mu      sync.RWMutex
	homeDir *home.Dir
	docs    map[string]*Document
}

// NewLibrary creates a library rooted at the given home directory and
// loads any documents already on disk.
func NewLibrary(homeDir *home.Dir) (*Library, error) {
	lib := &Library{
		homeDir: homeDir,
		docs:    make(map[string]*Document),
	}
	if err := lib.load(); err != nil {
		return nil, err
	}
	return lib, nil
}

// load rebuilds the index from document.json files on disk.
func (l *Library) load() error {
	entries, err := os.ReadDir(l.homeDir.DocumentsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read documents directory: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(l.homeDir.DocumentMetaPath(e.Name()))
		if err != nil {
			continue
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		l.docs[doc.ID] = &doc
	}
	return nil
}

// Add stores a document's original bytes, extracted text, and metadata.
func (l *Library) Add(doc *Document, original []byte, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.homeDir.EnsureDocumentDir(doc.ID); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	if err := os.WriteFile(l.homeDir.OriginalPath(doc.ID, doc.Format.Ext()), original, 0o644); err != nil {
		return fmt.Errorf("failed to write original: %w", err)
	}
	if err := os.WriteFile(l.homeDir.ExtractedTextPath(doc.ID), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write extracted text: %w", err)
	}

	meta, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(l.homeDir.DocumentMetaPath(doc.ID), meta, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	l.docs[doc.ID] = doc
	return nil
}

// Get returns a document by ID.
func (l *Library) Get(id string) (*Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

// Text returns the extracted text for a document.
func (l *Library) Text(id string) (string, error) {
	if _, err := l.Get(id); err != nil {
		return "", err
	}
	data, err := os.ReadFile(l.homeDir.ExtractedTextPath(id))
	if err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}
	return string(data), nil
}

// List returns all documents, newest first.
func (l *Library) List() []*Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	docs := make([]*Document, 0, len(l.docs))
	for _, d := range l.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs
}

// Count returns the number of documents in the library.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// Delete removes a document and its files.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.docs[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	if err := os.RemoveAll(l.homeDir.DocumentDir(id)); err != nil {
		return fmt.Errorf("failed to remove document files: %w", err)
	}
	delete(l.docs, id)
	return nil
}
