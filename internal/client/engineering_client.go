package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Estimate statuses
const (
	EstimateDraft = "draft"
	EstimateFinal = "final"
)

// Budget statuses
const (
	BudgetDraft     = "draft"
	BudgetSubmitted = "submitted"
	BudgetApproved  = "approved"
	BudgetRejected  = "rejected"
)

// Project is a construction project
type Project struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	ClientName    string          `json:"clientName,omitempty"`
	Location      string          `json:"location,omitempty"`
	Status        string          `json:"status"`
	StartDate     string          `json:"startDate,omitempty"`
	EndDate       string          `json:"endDate,omitempty"`
	ContractValue decimal.Decimal `json:"contractValue"`
	ManagerID     string          `json:"managerId,omitempty"`
	Audit
}

// ProjectInput creates or updates a project
type ProjectInput struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	ClientName    string          `json:"clientName,omitempty"`
	Location      string          `json:"location,omitempty"`
	Status        string          `json:"status,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	EndDate       string          `json:"endDate,omitempty"`
	ContractValue decimal.Decimal `json:"contractValue"`
	ManagerID     string          `json:"managerId,omitempty"`
}

// Estimate is a costed estimate for a project
type Estimate struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	Title       string          `json:"title"`
	Version     int             `json:"version"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes,omitempty"`
	Audit
}

// EstimateInput creates or updates an estimate
type EstimateInput struct {
	ProjectID   string          `json:"projectId"`
	Title       string          `json:"title"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes,omitempty"`
}

// BOQItem is one line of a bill of quantities
type BOQItem struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	MaterialID  string          `json:"materialId,omitempty"`
}

// BOQItemInput adds or edits a BOQ line
type BOQItemInput struct {
	ProjectID   string          `json:"projectId"`
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	MaterialID  string          `json:"materialId,omitempty"`
}

// BOQImportResult summarizes a BOQ spreadsheet upload
type BOQImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// BudgetLine is one cost head of a budget
type BudgetLine struct {
	CostHead string          `json:"costHead"`
	Amount   decimal.Decimal `json:"amount"`
}

// Budget is the approved spending envelope for a project
type Budget struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Lines       []BudgetLine    `json:"lines"`
	ApprovedBy  string          `json:"approvedBy,omitempty"`
	ApprovedAt  string          `json:"approvedAt,omitempty"`
	Audit
}

// BudgetInput creates a budget
type BudgetInput struct {
	ProjectID string       `json:"projectId"`
	Lines     []BudgetLine `json:"lines"`
}

// EngineeringClient is a client for the /engineering endpoints
type EngineeringClient struct {
	client *httpclient.Client
}

// NewEngineeringClient creates a new engineering client
func NewEngineeringClient(c *httpclient.Client) *EngineeringClient {
	return &EngineeringClient{client: c}
}

// ListProjects lists projects
func (c *EngineeringClient) ListProjects(ctx context.Context, params ListParams) (*Page[Project], error) {
	var page Page[Project]
	if err := c.client.Get(ctx, "/engineering/projects", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return &page, nil
}

// GetProject retrieves a project by ID
func (c *EngineeringClient) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := c.client.Get(ctx, resource("/engineering/projects", id), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// CreateProject creates a project
func (c *EngineeringClient) CreateProject(ctx context.Context, in *ProjectInput) (*Project, error) {
	var p Project
	if err := c.client.Post(ctx, "/engineering/projects", in, &p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

// UpdateProject updates a project
func (c *EngineeringClient) UpdateProject(ctx context.Context, id string, in *ProjectInput) (*Project, error) {
	var p Project
	if err := c.client.Put(ctx, resource("/engineering/projects", id), in, &p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &p, nil
}

// DeleteProject deletes a project
func (c *EngineeringClient) DeleteProject(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, resource("/engineering/projects", id), nil); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListEstimates lists the estimates of a project
func (c *EngineeringClient) ListEstimates(ctx context.Context, projectID string) ([]Estimate, error) {
	var out []Estimate
	if err := c.client.Get(ctx, resource("/engineering/projects", projectID, "estimates"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	return out, nil
}

// GetEstimate retrieves an estimate
func (c *EngineeringClient) GetEstimate(ctx context.Context, id string) (*Estimate, error) {
	var e Estimate
	if err := c.client.Get(ctx, resource("/engineering/estimates", id), nil, &e); err != nil {
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}
	return &e, nil
}

// CreateEstimate creates an estimate
func (c *EngineeringClient) CreateEstimate(ctx context.Context, in *EstimateInput) (*Estimate, error) {
	var e Estimate
	if err := c.client.Post(ctx, "/engineering/estimates", in, &e); err != nil {
		return nil, fmt.Errorf("failed to create estimate: %w", err)
	}
	return &e, nil
}

// UpdateEstimate updates a draft estimate
func (c *EngineeringClient) UpdateEstimate(ctx context.Context, id string, in *EstimateInput) (*Estimate, error) {
	var e Estimate
	if err := c.client.Put(ctx, resource("/engineering/estimates", id), in, &e); err != nil {
		return nil, fmt.Errorf("failed to update estimate: %w", err)
	}
	return &e, nil
}

// FinalizeEstimate marks an estimate final
func (c *EngineeringClient) FinalizeEstimate(ctx context.Context, id string) (*Estimate, error) {
	var e Estimate
	if err := c.client.Post(ctx, resource("/engineering/estimates", id, "finalize"), nil, &e); err != nil {
		return nil, fmt.Errorf("failed to finalize estimate: %w", err)
	}
	return &e, nil
}

// ListBOQ lists the BOQ of a project
func (c *EngineeringClient) ListBOQ(ctx context.Context, projectID string) ([]BOQItem, error) {
	var out []BOQItem
	if err := c.client.Get(ctx, resource("/engineering/projects", projectID, "boq"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list BOQ: %w", err)
	}
	return out, nil
}

// AddBOQItem adds a BOQ line
func (c *EngineeringClient) AddBOQItem(ctx context.Context, in *BOQItemInput) (*BOQItem, error) {
	var item BOQItem
	if err := c.client.Post(ctx, "/engineering/boq", in, &item); err != nil {
		return nil, fmt.Errorf("failed to add BOQ item: %w", err)
	}
	return &item, nil
}

// UpdateBOQItem edits a BOQ line
func (c *EngineeringClient) UpdateBOQItem(ctx context.Context, id string, in *BOQItemInput) (*BOQItem, error) {
	var item BOQItem
	if err := c.client.Put(ctx, resource("/engineering/boq", id), in, &item); err != nil {
		return nil, fmt.Errorf("failed to update BOQ item: %w", err)
	}
	return &item, nil
}

// DeleteBOQItem removes a BOQ line
func (c *EngineeringClient) DeleteBOQItem(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, resource("/engineering/boq", id), nil); err != nil {
		return fmt.Errorf("failed to delete BOQ item: %w", err)
	}
	return nil
}

// ImportBOQ uploads a BOQ spreadsheet for a project
func (c *EngineeringClient) ImportBOQ(ctx context.Context, projectID, fileName string, data []byte) (*BOQImportResult, error) {
	form := &httpclient.FormData{
		Fields: map[string]string{"projectId": projectID},
		Files:  []httpclient.FormFile{{Field: "file", FileName: fileName, ContentType: "application/octet-stream", Data: data}},
	}

	var out BOQImportResult
	if err := c.client.PostForm(ctx, "/engineering/boq/import", form, &out); err != nil {
		return nil, fmt.Errorf("failed to import BOQ: %w", err)
	}
	return &out, nil
}

// GetBudget retrieves the budget of a project
func (c *EngineeringClient) GetBudget(ctx context.Context, projectID string) (*Budget, error) {
	var b Budget
	if err := c.client.Get(ctx, resource("/engineering/projects", projectID, "budget"), nil, &b); err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &b, nil
}

// CreateBudget creates a draft budget
func (c *EngineeringClient) CreateBudget(ctx context.Context, in *BudgetInput) (*Budget, error) {
	var b Budget
	if err := c.client.Post(ctx, "/engineering/budgets", in, &b); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return &b, nil
}

// SubmitBudget sends a budget for approval
func (c *EngineeringClient) SubmitBudget(ctx context.Context, id string) (*Budget, error) {
	var b Budget
	if err := c.client.Post(ctx, resource("/engineering/budgets", id, "submit"), nil, &b); err != nil {
		return nil, fmt.Errorf("failed to submit budget: %w", err)
	}
	return &b, nil
}

// ApproveBudget approves a submitted budget
func (c *EngineeringClient) ApproveBudget(ctx context.Context, id, remarks string) (*Budget, error) {
	var b Budget
	if err := c.client.Post(ctx, resource("/engineering/budgets", id, "approve"), Remarks{Remarks: remarks}, &b); err != nil {
		return nil, fmt.Errorf("failed to approve budget: %w", err)
	}
	return &b, nil
}
