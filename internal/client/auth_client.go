package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// User is an ERP user account
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	ProjectIDs  []string `json:"projectIds,omitempty"`
	IsActive    bool     `json:"isActive"`
	Audit
}

// LoginRequest carries user credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data of a successful login
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

// ChangePasswordRequest carries a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthClient is a client for the /auth endpoints
type AuthClient struct {
	client *httpclient.Client
}

// NewAuthClient creates a new auth client
func NewAuthClient(c *httpclient.Client) *AuthClient {
	return &AuthClient{client: c}
}

// Login authenticates and stores the issued tokens in the session
func (c *AuthClient) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	var raw json.RawMessage
	err := c.client.Do(ctx, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      req,
		NoRefresh: true,
		NoAuth:    true,
	}, &raw)
	if err != nil {
		return nil, err
	}

	if _, err := c.client.StoreLogin(ctx, raw); err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode login result: %w", err)
	}
	return &result, nil
}

// Logout ends the session on the backend
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.client.Do(ctx, &httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/logout",
		NoRefresh: true,
	}, nil)
}

// Me returns the user behind the current token
func (c *AuthClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}

// ChangePassword changes the current user's password
func (c *AuthClient) ChangePassword(ctx context.Context, req *ChangePasswordRequest) error {
	if err := c.client.Post(ctx, "/auth/change-password", req, nil); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// ClearSession drops the local session without contacting the backend
func (c *AuthClient) ClearSession(ctx context.Context) error {
	return c.client.ClearSession(ctx)
}
