// Package storage keeps a history of evaluated production graph reports.
// Supports file and memory backends.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"factory-graph/core/output"
	"factory-graph/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save stores a snapshot, assigning its ID and time if unset
	Save(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by ID
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List lists snapshots oldest first
	List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, id string) error

	// GetLatest gets the newest snapshot of a source
	GetLatest(ctx context.Context, source string) (*Snapshot, error)

	// Close closes the store
	Close() error
}

// Snapshot is a stored report
type Snapshot struct {
	// ID is unique identifier
	ID string `json:"id"`

	// Source groups snapshots of the same definition
	Source string `json:"source"`

	// Fingerprint of the evaluated graph
	Fingerprint string `json:"fingerprint"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`

	// Report is the full evaluation
	Report *output.Report `json:"report"`
}

// NewSnapshot wraps a report for saving
func NewSnapshot(report *output.Report) *Snapshot {
	return &Snapshot{
		Source:      report.Source,
		Fingerprint: report.Fingerprint,
		Report:      report,
	}
}

// ListFilter filters snapshot listing
type ListFilter struct {
	Source string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

func (f *ListFilter) match(snap *Snapshot) bool {
	if f == nil {
		return true
	}
	if f.Source != "" && snap.Source != f.Source {
		return false
	}
	if !f.Since.IsZero() && snap.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && snap.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// page sorts snapshots oldest first and applies offset and limit
func (f *ListFilter) page(snaps []*Snapshot) []*Snapshot {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	if f == nil {
		return snaps
	}
	if f.Offset > 0 {
		if f.Offset >= len(snaps) {
			return nil
		}
		snaps = snaps[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(snaps) {
		snaps = snaps[:f.Limit]
	}
	return snaps
}

func stamp(snap *Snapshot) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
}

// validID rejects IDs that could escape the storage directory
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NotFound("snapshot", id)
	}
	return nil
}

// FileStore is a file-based storage backend. Each snapshot is one JSON
// file named by its ID.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(snap)
	if err := validID(snap.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Internal("failed to marshal snapshot", err)
	}
	if err := os.WriteFile(s.path(snap.ID), data, 0644); err != nil {
		return errors.Internal("failed to write snapshot", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(s.path(id), id)
}

func (s *FileStore) read(path, id string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("snapshot", id)
		}
		return nil, errors.Internal("failed to read snapshot", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Internal(fmt.Sprintf("failed to unmarshal snapshot %s", id), err)
	}
	return &snap, nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Internal("failed to read storage", err)
	}

	var snaps []*Snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		// Unreadable files are skipped rather than failing the listing
		snap, err := s.read(filepath.Join(s.basePath, entry.Name()), entry.Name())
		if err != nil {
			continue
		}
		if filter.match(snap) {
			snaps = append(snaps, snap)
		}
	}

	return filter.page(snaps), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("snapshot", id)
		}
		return errors.Internal("failed to delete snapshot", err)
	}
	return nil
}

func (s *FileStore) GetLatest(ctx context.Context, source string) (*Snapshot, error) {
	snaps, err := s.List(ctx, &ListFilter{Source: source})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.NotFound("snapshot of source", source)
	}
	return snaps[len(snaps)-1], nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	snaps map[string]*Snapshot
	mu    sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps: make(map[string]*Snapshot),
	}
}

func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(snap)
	s.snaps[snap.ID] = snap
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[id]
	if !ok {
		return nil, errors.NotFound("snapshot", id)
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snaps []*Snapshot
	for _, snap := range s.snaps {
		if filter.match(snap) {
			snaps = append(snaps, snap)
		}
	}
	return filter.page(snaps), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snaps[id]; !ok {
		return errors.NotFound("snapshot", id)
	}
	delete(s.snaps, id)
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, source string) (*Snapshot, error) {
	snaps, err := s.List(ctx, &ListFilter{Source: source})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.NotFound("snapshot of source", source)
	}
	return snaps[len(snaps)-1], nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, config map[string]string) (Store, error) {
	switch backend {
	case BackendFile:
		path := config["path"]
		if path == "" {
			path = ".factory-graph"
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported backend: %s", backend)
	}
}

// Ensure interfaces are implemented
var _ io.Closer = (*FileStore)(nil)
var _ io.Closer = (*MemoryStore)(nil)
var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
