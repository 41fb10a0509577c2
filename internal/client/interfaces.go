package client

import "context"

// AuthClientInterface defines the interface for the auth client
type AuthClientInterface interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*User, error)
	ClearSession(ctx context.Context) error
}

// EngineeringClientInterface defines the engineering reads procurement depends on
type EngineeringClientInterface interface {
	GetBudget(ctx context.Context, projectID string) (*Budget, error)
	ListEstimates(ctx context.Context, projectID string) ([]Estimate, error)
}

// PurchaseClientInterface defines the purchase operations procurement depends on
type PurchaseClientInterface interface {
	GetRequisition(ctx context.Context, id string) (*MaterialRequisition, error)
	CreateRFQ(ctx context.Context, in *RFQInput) (*RFQ, error)
	CreatePurchaseOrder(ctx context.Context, in *PurchaseOrderInput) (*PurchaseOrder, error)
}

// WorkflowClientInterface defines the approval operations
type WorkflowClientInterface interface {
	PendingApprovals(ctx context.Context, params ListParams) ([]ApprovalTask, error)
	Approve(ctx context.Context, taskID, remarks string) (*ApprovalTask, error)
	Reject(ctx context.Context, taskID string, req *RejectRequest) (*ApprovalTask, error)
	Delegate(ctx context.Context, taskID string, req *DelegateRequest) (*ApprovalTask, error)
	ApprovalHistory(ctx context.Context, documentType, documentID string) ([]ApprovalTask, error)
}

var (
	_ AuthClientInterface        = (*AuthClient)(nil)
	_ EngineeringClientInterface = (*EngineeringClient)(nil)
	_ PurchaseClientInterface    = (*PurchaseClient)(nil)
	_ WorkflowClientInterface    = (*WorkflowClient)(nil)
)
