package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// UserInput creates or updates a user
type UserInput struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Role       string   `json:"role"`
	Password   string   `json:"password,omitempty"`
	ProjectIDs []string `json:"projectIds,omitempty"`
}

// Role groups permissions
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
	IsSystem    bool     `json:"isSystem"`
}

// RoleInput creates a role
type RoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// AuditLog records a change made through the ERP
type AuditLog struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AuditFilter narrows an audit log query
type AuditFilter struct {
	ListParams
	UserID     string
	Action     string
	EntityType string
	EntityID   string
}

// AdminClient is a client for the /admin endpoints
type AdminClient struct {
	client *httpclient.Client
}

// NewAdminClient creates a new admin client
func NewAdminClient(c *httpclient.Client) *AdminClient {
	return &AdminClient{client: c}
}

// ListUsers lists users
func (c *AdminClient) ListUsers(ctx context.Context, params ListParams) (*Page[User], error) {
	var page Page[User]
	if err := c.client.Get(ctx, "/admin/users", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &page, nil
}

// CreateUser creates a user
func (c *AdminClient) CreateUser(ctx context.Context, in *UserInput) (*User, error) {
	var out User
	if err := c.client.Post(ctx, "/admin/users", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &out, nil
}

// UpdateUser updates a user
func (c *AdminClient) UpdateUser(ctx context.Context, id string, in *UserInput) (*User, error) {
	var out User
	if err := c.client.Put(ctx, resource("/admin/users", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &out, nil
}

// DeactivateUser disables a user's login
func (c *AdminClient) DeactivateUser(ctx context.Context, id string) error {
	if err := c.client.Post(ctx, resource("/admin/users", id, "deactivate"), nil, nil); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// ListRoles lists roles
func (c *AdminClient) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.client.Get(ctx, "/admin/roles", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return out, nil
}

// CreateRole creates a role
func (c *AdminClient) CreateRole(ctx context.Context, in *RoleInput) (*Role, error) {
	var out Role
	if err := c.client.Post(ctx, "/admin/roles", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return &out, nil
}

// UpdateRolePermissions replaces the permissions of a role
func (c *AdminClient) UpdateRolePermissions(ctx context.Context, id string, permissions []string) (*Role, error) {
	body := struct {
		Permissions []string `json:"permissions"`
	}{Permissions: permissions}

	var out Role
	if err := c.client.Put(ctx, resource("/admin/roles", id, "permissions"), body, &out); err != nil {
		return nil, fmt.Errorf("failed to update role permissions: %w", err)
	}
	return &out, nil
}

// ListAuditLogs queries the audit trail
func (c *AdminClient) ListAuditLogs(ctx context.Context, filter AuditFilter) (*Page[AuditLog], error) {
	query := filter.ListParams.Values()
	setIf(query, "userId", filter.UserID)
	setIf(query, "action", filter.Action)
	setIf(query, "entityType", filter.EntityType)
	setIf(query, "entityId", filter.EntityID)

	var page Page[AuditLog]
	if err := c.client.Get(ctx, "/admin/audit-logs", query, &page); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return &page, nil
}
