// Package store persists case records, cached extractions, generated reports
// and the AI provider configuration as files under one directory. The layout
// mirrors the key names the browser version used in local storage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/laudo/internal/record"
)

const (
	processesKey  = "laudo_processes"
	extractionPfx = "process_pdf_"
	reportPfx     = "laudo_html_"
	aiConfigKey   = "ai_laudo_config"
)

// ErrNotFound is returned when a key or case id is absent.
var ErrNotFound = errors.New("not found")

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("duplicate case id")

// Store is a file-backed key-value store. A mutex serializes access within
// one process; separate processes sharing a directory are not coordinated.
type Store struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on files.
	StrictPerms bool
	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string

	mu sync.Mutex
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Store) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir not configured")
	}
	perm := os.FileMode(0o755)
	if s.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(s.Dir, perm); err != nil {
		return err
	}
	if s.StrictPerms {
		if info, err := os.Stat(s.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(s.Dir, 0o700)
		}
	}
	return nil
}

func (s *Store) pathFor(key, ext string) string {
	return filepath.Join(s.Dir, key+ext)
}

func (s *Store) readFile(key, ext string) ([]byte, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.pathFor(key, ext))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// writeFile replaces the key's file through a temp file and rename so a
// crash never leaves a truncated case list.
func (s *Store) writeFile(key, ext string, data []byte) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if s.StrictPerms {
		mode = 0o600
	}
	p := s.pathFor(key, ext)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *Store) removeFile(key, ext string) error {
	err := os.Remove(s.pathFor(key, ext))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) loadAll() ([]record.CaseRecord, error) {
	b, err := s.readFile(processesKey, ".json")
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []record.CaseRecord
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", processesKey, err)
	}
	return list, nil
}

func (s *Store) saveAll(list []record.CaseRecord) error {
	if list == nil {
		list = []record.CaseRecord{}
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFile(processesKey, ".json", b)
}

// bump returns a timestamp strictly after prev even if the clock stalls or
// moves backwards.
func (s *Store) bump(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// List returns every case, most recently updated first.
func (s *Store) List() ([]record.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

// Get returns the case with the given id.
func (s *Store) Get(id string) (record.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return record.CaseRecord{}, err
	}
	for _, r := range list {
		if r.ID == id {
			return r, nil
		}
	}
	return record.CaseRecord{}, fmt.Errorf("case %s: %w", id, ErrNotFound)
}

// Create inserts rec, assigning an id, status and timestamps when absent.
func (s *Store) Create(rec record.CaseRecord) (record.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return record.CaseRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	for _, r := range list {
		if r.ID == rec.ID {
			return record.CaseRecord{}, fmt.Errorf("case %s: %w", rec.ID, ErrDuplicateID)
		}
	}
	if rec.Status == "" {
		rec.Status = record.StatusPending
	}
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = maxTime(now, rec.CreatedAt)
	list = append(list, rec)
	if err := s.saveAll(list); err != nil {
		return record.CaseRecord{}, err
	}
	return rec, nil
}

// Save upserts rec and bumps its updatedAt.
func (s *Store) Save(rec record.CaseRecord) (record.CaseRecord, error) {
	if rec.ID == "" {
		return record.CaseRecord{}, errors.New("save: empty case id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return record.CaseRecord{}, err
	}
	for i := range list {
		if list[i].ID != rec.ID {
			continue
		}
		rec.CreatedAt = list[i].CreatedAt
		rec.UpdatedAt = s.bump(maxTime(list[i].UpdatedAt, rec.UpdatedAt))
		list[i] = rec
		return rec, s.saveAll(list)
	}
	now := s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.Status == "" {
		rec.Status = record.StatusPending
	}
	rec.UpdatedAt = s.bump(rec.UpdatedAt)
	list = append(list, rec)
	return rec, s.saveAll(list)
}

// Update applies patch to the stored case. The id and creation time cannot
// be changed by the patch.
func (s *Store) Update(id string, patch func(*record.CaseRecord)) (record.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return record.CaseRecord{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		prev := list[i]
		next := prev
		if patch != nil {
			patch(&next)
		}
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
		next.UpdatedAt = s.bump(prev.UpdatedAt)
		list[i] = next
		if err := s.saveAll(list); err != nil {
			return record.CaseRecord{}, err
		}
		return next, nil
	}
	return record.CaseRecord{}, fmt.Errorf("case %s: %w", id, ErrNotFound)
}

// Delete removes the case and its per-case keys.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return err
	}
	out := list[:0]
	found := false
	for _, r := range list {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	if err := s.saveAll(out); err != nil {
		return err
	}
	if err := s.removeFile(extractionPfx+id, ".json"); err != nil {
		return err
	}
	return s.removeFile(reportPfx+id, ".html")
}

// Clear removes every case with its per-case keys. The AI configuration is
// kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureDir(); err != nil {
		return err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, aiConfigKey) {
			continue
		}
		if name == processesKey+".json" || strings.HasPrefix(name, extractionPfx) || strings.HasPrefix(name, reportPfx) {
			if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	return nil
}

// Stats counts cases per status.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Error      int `json:"error"`
}

func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadAll()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(list)}
	for _, r := range list {
		switch r.Status {
		case record.StatusPending:
			st.Pending++
		case record.StatusProcessing:
			st.Processing++
		case record.StatusCompleted:
			st.Completed++
		case record.StatusError:
			st.Error++
		}
	}
	return st, nil
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
