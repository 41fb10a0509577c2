package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Keys under which the session is persisted
const (
	TokenKey        = "erp_auth_token"
	RefreshTokenKey = "erp_refresh_token"
)

// Store is a persistent key-value store for session values
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenStore picks a store implementation from a location string:
// "memory" (or empty), "postgres://..." / "postgresql://...", or a SQLite
// path with an optional "sqlite://" prefix.
func OpenStore(ctx context.Context, location string) (Store, error) {
	switch {
	case location == "" || location == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return NewPostgresStore(ctx, location)
	case strings.HasPrefix(location, "sqlite://"):
		return NewSQLiteStore(strings.TrimPrefix(location, "sqlite://"))
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported session store %q", location)
	default:
		return NewSQLiteStore(location)
	}
}

// MemoryStore keeps values for the life of the process
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
