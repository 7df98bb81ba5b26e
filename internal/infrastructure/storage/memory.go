package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	captureapp "github.com/chitosepg/cameracapture/internal/application/capture"
)

// MemoryStorage keeps captures in memory. Use it for dry runs and tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte

	// WriteErr, when set, is returned by every Write
	WriteErr error
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

// Exists reports whether name has been written
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[name]
	return ok, nil
}

// Write stores a copy of data
func (s *MemoryStorage) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	if s.WriteErr != nil {
		return "", s.WriteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = bytes.Clone(data)
	return "memory://" + name, nil
}

// Open returns a reader over the stored bytes
func (s *MemoryStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	if !ok {
		return nil, notFound(name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Names returns the stored names in sorted order
func (s *MemoryStorage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ensure MemoryStorage implements OutputStorage
var _ captureapp.OutputStorage = (*MemoryStorage)(nil)
