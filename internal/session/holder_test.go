package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestHolder_SetMirrorsToStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	h, err := NewHolder(ctx, store, nil)
	if err != nil {
		t.Fatalf("NewHolder failed: %v", err)
	}
	if h.IsAuthenticated() {
		t.Fatal("Expected a fresh holder to be logged out")
	}

	if err := h.Set(ctx, "tok-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	stored, ok, _ := store.Get(ctx, TokenKey)
	if !ok || stored != "tok-1" {
		t.Errorf("Expected store to hold tok-1 under %s, got %q (present=%v)", TokenKey, stored, ok)
	}
	if h.Token() != "tok-1" {
		t.Errorf("Expected in-memory token tok-1, got %q", h.Token())
	}
}

func TestHolder_ClearRemovesBothTokens(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	h, _ := NewHolder(ctx, store, nil)

	_ = h.Set(ctx, "access")
	_ = h.SetRefreshToken(ctx, "refresh")

	if err := h.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if h.Token() != "" || h.RefreshToken() != "" {
		t.Error("Expected in-memory tokens to be empty after Clear")
	}
	for _, key := range []string{TokenKey, RefreshTokenKey} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Errorf("Expected %s to be removed from the store", key)
		}
	}
}

// failingDeleteStore refuses to delete one key
type failingDeleteStore struct {
	*MemoryStore
	key string
}

func (s *failingDeleteStore) Delete(ctx context.Context, key string) error {
	if key == s.key {
		return fmt.Errorf("delete %s: disk I/O error", key)
	}
	return s.MemoryStore.Delete(ctx, key)
}

func TestHolder_ClearAttemptsBothDeletes(t *testing.T) {
	ctx := context.Background()
	store := &failingDeleteStore{MemoryStore: NewMemoryStore(), key: TokenKey}
	h, _ := NewHolder(ctx, store, nil)

	_ = h.Set(ctx, "access")
	_ = h.SetRefreshToken(ctx, "refresh")

	err := h.Clear(ctx)
	if err == nil || !strings.Contains(err.Error(), "disk I/O error") {
		t.Fatalf("Expected the access token delete error, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, RefreshTokenKey); ok {
		t.Error("Expected the refresh token removed despite the earlier failure")
	}
	if h.Token() != "" || h.RefreshToken() != "" {
		t.Error("Expected in-memory tokens to be empty after Clear")
	}
}

func TestHolder_LoadsPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, TokenKey, "persisted")
	_ = store.Set(ctx, RefreshTokenKey, "persisted-refresh")

	h, err := NewHolder(ctx, store, nil)
	if err != nil {
		t.Fatalf("NewHolder failed: %v", err)
	}
	if h.Token() != "persisted" {
		t.Errorf("Expected persisted token, got %q", h.Token())
	}
	if h.RefreshToken() != "persisted-refresh" {
		t.Errorf("Expected persisted refresh token, got %q", h.RefreshToken())
	}
}

func TestSQLiteStore_RoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := OpenStore(ctx, "sqlite://"+path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	if err := store.Set(ctx, TokenKey, "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, TokenKey, "second"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, TokenKey)
	if err != nil || !ok {
		t.Fatalf("Expected stored token, got ok=%v err=%v", ok, err)
	}
	if value != "second" {
		t.Errorf("Expected overwritten value 'second', got %q", value)
	}

	if err := reopened.Delete(ctx, TokenKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, TokenKey); ok {
		t.Error("Expected token to be gone after Delete")
	}
}

func TestOpenStore_RejectsUnknownScheme(t *testing.T) {
	if _, err := OpenStore(context.Background(), "redis://localhost:6379"); err == nil {
		t.Fatal("Expected unsupported scheme to fail")
	}
}
