package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nightdrive/models"
)

// NDJSONStore persists leads as newline-delimited JSON, one file per capture
// channel (contact.ndjson, newsletter.ndjson). It is safe for concurrent use.
type NDJSONStore struct {
	mu  sync.Mutex
	dir string
}

// NewNDJSONStore creates the data directory if needed and returns the store.
func NewNDJSONStore(dir string) (*NDJSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ndjson: create data dir: %w", err)
	}
	return &NDJSONStore{dir: dir}, nil
}

// Path returns the backing file for a capture channel.
func (s *NDJSONStore) Path(kind string) string {
	return filepath.Join(s.dir, kind+".ndjson")
}

// Append writes one lead line, stamping it with the current time.
func (s *NDJSONStore) Append(kind string, lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead.TS = time.Now().UTC().Format(time.RFC3339)
	line, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("ndjson: marshal lead: %w", err)
	}

	f, err := os.OpenFile(s.Path(kind), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("ndjson: open %s: %w", kind, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("ndjson: append %s: %w", kind, err)
	}
	return nil
}

// ReadAll returns every parseable lead in file order. Corrupt lines are
// skipped rather than failing the whole read.
func (s *NDJSONStore) ReadAll(kind string) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ndjson: open %s: %w", kind, err)
	}
	defer f.Close()

	var leads []models.Lead
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var lead models.Lead
		if err := json.Unmarshal(scanner.Bytes(), &lead); err != nil {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, scanner.Err()
}

// Close is a no-op; files are opened per call.
func (s *NDJSONStore) Close() error { return nil }
