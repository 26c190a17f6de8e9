package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nightdrive/models"
)

// FeaturedStore keeps paid placements in a single JSON file. The file is
// re-read on every Load so admin writes are visible immediately; nothing is
// cached in memory.
type FeaturedStore struct {
	mu   sync.Mutex
	path string
}

// NewFeaturedStore creates the parent directory if needed.
func NewFeaturedStore(path string) (*FeaturedStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("featured: create data dir: %w", err)
	}
	return &FeaturedStore{path: path}, nil
}

// load reads the file without locking. A missing or unreadable file is an
// empty list, never an error — monetization must not break the listing
// surface.
func (s *FeaturedStore) load() []models.FeaturedPlacement {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var placements []models.FeaturedPlacement
	if err := json.Unmarshal(data, &placements); err != nil {
		return nil
	}
	return placements
}

// Load returns every stored placement, expired ones included.
func (s *FeaturedStore) Load() []models.FeaturedPlacement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// ActiveIDs returns the set of listing ids with a live placement at now.
func (s *FeaturedStore) ActiveIDs(now time.Time) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, p := range s.Load() {
		if p.Active(now) {
			ids[p.ListingID] = struct{}{}
		}
	}
	return ids
}

// Add appends a placement and rewrites the file.
func (s *FeaturedStore) Add(p models.FeaturedPlacement) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	placements := s.load()
	p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	placements = append(placements, p)

	data, err := json.MarshalIndent(placements, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("featured: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return 0, fmt.Errorf("featured: write %s: %w", s.path, err)
	}
	return len(placements), nil
}
