package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process map-backed Store. All operations are
// mutex-serialized, the same discipline the position store used for its
// file writes — here there's no file to corrupt, but concurrent ingesters
// and readers still share the one map.
type MemoryStore struct {
	mu    sync.Mutex
	ints  map[string]int64
	dicts map[string][]byte
}

// NewMemoryStore creates an empty in-memory store, used for tests and
// single-process dry runs.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ints:  make(map[string]int64),
		dicts: make(map[string][]byte),
	}
}

func (s *MemoryStore) SetInt(_ context.Context, key string, v int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[key] = v
	return nil
}

func (s *MemoryStore) GetInt(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ints[key]
	return v, ok, nil
}

func (s *MemoryStore) SetDict(_ context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal dict: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dicts[key] = data
	return nil
}

func (s *MemoryStore) GetDict(_ context.Context, key string, out interface{}) (bool, error) {
	s.mu.Lock()
	data, ok := s.dicts[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal dict: %w", err)
	}
	return true, nil
}
