package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pesio-ai/erp-client/internal/logger"
)

// Holder is the process-wide session: an in-memory access token mirrored to a
// persistent store. The in-memory value is authoritative for the running
// process even if a store write fails.
type Holder struct {
	mu           sync.RWMutex
	token        string
	refreshToken string
	store        Store
	log          *logger.Logger
}

// NewHolder creates a holder and loads any persisted session from store
func NewHolder(ctx context.Context, store Store, log *logger.Logger) (*Holder, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = logger.Nop()
	}

	h := &Holder{store: store, log: log}

	token, _, err := store.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session token: %w", err)
	}
	refresh, _, err := store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	h.token = token
	h.refreshToken = refresh

	return h, nil
}

// Token returns the current access token, or "" when logged out
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// RefreshToken returns the stored refresh token, if the backend issued one
func (h *Holder) RefreshToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.refreshToken
}

// IsAuthenticated reports whether an access token is held
func (h *Holder) IsAuthenticated() bool {
	return h.Token() != ""
}

// Set stores a new access token
func (h *Holder) Set(ctx context.Context, token string) error {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	if err := h.store.Set(ctx, TokenKey, token); err != nil {
		h.log.Warn().Err(err).Msg("Failed to persist access token")
		return err
	}
	h.log.Debug().Msg("Access token stored")
	return nil
}

// SetRefreshToken stores a refresh token. An empty value removes it.
func (h *Holder) SetRefreshToken(ctx context.Context, token string) error {
	h.mu.Lock()
	h.refreshToken = token
	h.mu.Unlock()

	var err error
	if token == "" {
		err = h.store.Delete(ctx, RefreshTokenKey)
	} else {
		err = h.store.Set(ctx, RefreshTokenKey, token)
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to persist refresh token")
	}
	return err
}

// Clear forgets the session in memory and in the store
func (h *Holder) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.refreshToken = ""
	h.mu.Unlock()

	var errs []error
	if err := h.store.Delete(ctx, TokenKey); err != nil {
		h.log.Warn().Err(err).Msg("Failed to remove persisted access token")
		errs = append(errs, err)
	}
	if err := h.store.Delete(ctx, RefreshTokenKey); err != nil {
		h.log.Warn().Err(err).Msg("Failed to remove persisted refresh token")
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	h.log.Debug().Msg("Session cleared")
	return nil
}
