package service

import (
	"context"
	"strings"

	"github.com/pesio-ai/erp-client/internal/client"
	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/logger"
)

// SessionService handles login and logout
type SessionService struct {
	auth client.AuthClientInterface
	log  *logger.Logger
}

// NewSessionService creates a new session service
func NewSessionService(auth client.AuthClientInterface, log *logger.Logger) *SessionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{auth: auth, log: log}
}

// Login authenticates with email and password. Tokens are stored by the client.
func (s *SessionService) Login(ctx context.Context, email, password string) (*client.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.InvalidInput("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, errors.InvalidInput("email", "invalid email address")
	}
	if password == "" {
		return nil, errors.InvalidInput("password", "password is required")
	}

	result, err := s.auth.Login(ctx, &client.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.log.Warn().Str("email", email).Err(err).Msg("Login failed")
		return nil, err
	}

	s.log.Info().Str("user_id", result.User.ID).Str("role", result.User.Role).Msg("Logged in")
	return &result.User, nil
}

// Logout ends the backend session and always clears the local one
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}
	if err := s.auth.ClearSession(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to clear local session")
	}
	s.log.Info().Msg("Logged out")
	return nil
}

// Me returns the current user
func (s *SessionService) Me(ctx context.Context) (*client.User, error) {
	return s.auth.Me(ctx)
}
