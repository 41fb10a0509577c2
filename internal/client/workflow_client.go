package client

import (
	"context"
	"fmt"
	"time"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Approval task statuses
const (
	TaskPending   = "pending"
	TaskApproved  = "approved"
	TaskRejected  = "rejected"
	TaskDelegated = "delegated"
)

// WorkflowStep is one approval level of a workflow definition
type WorkflowStep struct {
	StepNumber   int    `json:"stepNumber"`
	Name         string `json:"name"`
	ApproverRole string `json:"approverRole,omitempty"`
	ApproverID   string `json:"approverId,omitempty"`
	SLAHours     int    `json:"slaHours,omitempty"`
}

// WorkflowDefinition configures how a document type is approved
type WorkflowDefinition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DocumentType string         `json:"documentType"` // e.g. material_requisition, purchase_order
	IsActive     bool           `json:"isActive"`
	Steps        []WorkflowStep `json:"steps"`
	Audit
}

// WorkflowDefinitionInput creates or updates a workflow definition
type WorkflowDefinitionInput struct {
	Name         string         `json:"name"`
	DocumentType string         `json:"documentType"`
	IsActive     bool           `json:"isActive"`
	Steps        []WorkflowStep `json:"steps"`
}

// ApprovalTask is a pending or completed approval assigned to a user
type ApprovalTask struct {
	ID           string     `json:"id"`
	WorkflowID   string     `json:"workflowId"`
	DocumentType string     `json:"documentType"`
	DocumentID   string     `json:"documentId"`
	DocumentRef  string     `json:"documentRef,omitempty"`
	StepNumber   int        `json:"stepNumber"`
	StepName     string     `json:"stepName,omitempty"`
	AssignedTo   string     `json:"assignedTo"`
	Status       string     `json:"status"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	ActedAt      *time.Time `json:"actedAt,omitempty"`
	ActedBy      string     `json:"actedBy,omitempty"`
	Remarks      string     `json:"remarks,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// RejectRequest rejects an approval task
type RejectRequest struct {
	Reason string `json:"reason"`
}

// DelegateRequest hands an approval task to another user
type DelegateRequest struct {
	DelegateTo string `json:"delegateTo"`
	Remarks    string `json:"remarks,omitempty"`
}

// SLARule sets a response deadline and escalation for a workflow step
type SLARule struct {
	ID           string `json:"id"`
	DocumentType string `json:"documentType"`
	StepNumber   int    `json:"stepNumber"`
	Hours        int    `json:"hours"`
	EscalateTo   string `json:"escalateTo,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// SLARuleInput creates or updates an SLA rule
type SLARuleInput struct {
	DocumentType string `json:"documentType"`
	StepNumber   int    `json:"stepNumber"`
	Hours        int    `json:"hours"`
	EscalateTo   string `json:"escalateTo,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// WorkflowClient is a client for the /workflow endpoints
type WorkflowClient struct {
	client *httpclient.Client
}

// NewWorkflowClient creates a new workflow client
func NewWorkflowClient(c *httpclient.Client) *WorkflowClient {
	return &WorkflowClient{client: c}
}

// ListDefinitions lists workflow definitions
func (c *WorkflowClient) ListDefinitions(ctx context.Context, params ListParams) (*Page[WorkflowDefinition], error) {
	var page Page[WorkflowDefinition]
	if err := c.client.Get(ctx, "/workflow/definitions", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}
	return &page, nil
}

// GetDefinition retrieves a workflow definition
func (c *WorkflowClient) GetDefinition(ctx context.Context, id string) (*WorkflowDefinition, error) {
	var out WorkflowDefinition
	if err := c.client.Get(ctx, resource("/workflow/definitions", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get workflow definition: %w", err)
	}
	return &out, nil
}

// CreateDefinition creates a workflow definition
func (c *WorkflowClient) CreateDefinition(ctx context.Context, in *WorkflowDefinitionInput) (*WorkflowDefinition, error) {
	var out WorkflowDefinition
	if err := c.client.Post(ctx, "/workflow/definitions", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create workflow definition: %w", err)
	}
	return &out, nil
}

// UpdateDefinition updates a workflow definition
func (c *WorkflowClient) UpdateDefinition(ctx context.Context, id string, in *WorkflowDefinitionInput) (*WorkflowDefinition, error) {
	var out WorkflowDefinition
	if err := c.client.Put(ctx, resource("/workflow/definitions", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update workflow definition: %w", err)
	}
	return &out, nil
}

// PendingApprovals lists the approval tasks waiting on the current user
func (c *WorkflowClient) PendingApprovals(ctx context.Context, params ListParams) ([]ApprovalTask, error) {
	var out []ApprovalTask
	if err := c.client.Get(ctx, "/workflow/approvals/pending", params.Values(), &out); err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return out, nil
}

// Approve approves an approval task
func (c *WorkflowClient) Approve(ctx context.Context, taskID, remarks string) (*ApprovalTask, error) {
	var out ApprovalTask
	if err := c.client.Post(ctx, resource("/workflow/approvals", taskID, "approve"), Remarks{Remarks: remarks}, &out); err != nil {
		return nil, fmt.Errorf("failed to approve task: %w", err)
	}
	return &out, nil
}

// Reject rejects an approval task
func (c *WorkflowClient) Reject(ctx context.Context, taskID string, req *RejectRequest) (*ApprovalTask, error) {
	var out ApprovalTask
	if err := c.client.Post(ctx, resource("/workflow/approvals", taskID, "reject"), req, &out); err != nil {
		return nil, fmt.Errorf("failed to reject task: %w", err)
	}
	return &out, nil
}

// Delegate reassigns an approval task
func (c *WorkflowClient) Delegate(ctx context.Context, taskID string, req *DelegateRequest) (*ApprovalTask, error) {
	var out ApprovalTask
	if err := c.client.Post(ctx, resource("/workflow/approvals", taskID, "delegate"), req, &out); err != nil {
		return nil, fmt.Errorf("failed to delegate task: %w", err)
	}
	return &out, nil
}

// ApprovalHistory returns every task raised for a document
func (c *WorkflowClient) ApprovalHistory(ctx context.Context, documentType, documentID string) ([]ApprovalTask, error) {
	var out []ApprovalTask
	if err := c.client.Get(ctx, resource("/workflow/approvals/history", documentType, documentID), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get approval history: %w", err)
	}
	return out, nil
}

// ListSLARules lists SLA rules
func (c *WorkflowClient) ListSLARules(ctx context.Context) ([]SLARule, error) {
	var out []SLARule
	if err := c.client.Get(ctx, "/workflow/sla-rules", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list SLA rules: %w", err)
	}
	return out, nil
}

// CreateSLARule creates an SLA rule
func (c *WorkflowClient) CreateSLARule(ctx context.Context, in *SLARuleInput) (*SLARule, error) {
	var out SLARule
	if err := c.client.Post(ctx, "/workflow/sla-rules", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create SLA rule: %w", err)
	}
	return &out, nil
}

// UpdateSLARule updates an SLA rule
func (c *WorkflowClient) UpdateSLARule(ctx context.Context, id string, in *SLARuleInput) (*SLARule, error) {
	var out SLARule
	if err := c.client.Put(ctx, resource("/workflow/sla-rules", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update SLA rule: %w", err)
	}
	return &out, nil
}
