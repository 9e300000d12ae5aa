package studyset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/studydeck/studydeck/internal/home"
)

// Store persists generated study sets as JSON files under the home
// directory's studysets folder.
type Store struct {
	mu      sync.RWMutex
	homeDir *home.Dir
}

// NewStore creates a study set store rooted at the given home directory.
func NewStore(homeDir *home.Dir) *Store {
	return &Store{homeDir: homeDir}
}

// Save writes a study set to disk.
func (s *Store) Save(set *StudySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal study set: %w", err)
	}
	if err := os.WriteFile(s.homeDir.StudySetPath(set.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write study set: %w", err)
	}
	return nil
}

// Get loads a study set by ID.
func (s *Store) Get(id string) (*StudySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.homeDir.StudySetPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("study set not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read study set: %w", err)
	}
	var set StudySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse study set %s: %w", id, err)
	}
	return &set, nil
}

// List returns all stored study sets, newest first. Sets for docID only
// when docID is non-empty.
func (s *Store) List(docID string) ([]*StudySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.homeDir.StudySetsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read studysets directory: %w", err)
	}

	var sets []*StudySet
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(s.homeDir.StudySetPath(strings.TrimSuffix(e.Name(), ".json")))
		if err != nil {
			continue
		}
		var set StudySet
		if err := json.Unmarshal(data, &set); err != nil {
			continue
		}
		if docID != "" && set.DocumentID != docID {
			continue
		}
		sets = append(sets, &set)
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].CreatedAt.After(sets[j].CreatedAt)
	})
	return sets, nil
}

// Delete removes a stored study set.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.homeDir.StudySetPath(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("study set not found: %s", id)
	}
	return err
}
