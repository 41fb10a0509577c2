package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Contractor is a subcontractor engaged on work orders
type Contractor struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	ContactName string   `json:"contactName,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	PAN         string   `json:"pan,omitempty"`
	GSTIN       string   `json:"gstin,omitempty"`
	Trades      []string `json:"trades,omitempty"`
	IsActive    bool     `json:"isActive"`
	Audit
}

// ContractorInput creates or updates a contractor
type ContractorInput struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	ContactName string   `json:"contactName,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	PAN         string   `json:"pan,omitempty"`
	GSTIN       string   `json:"gstin,omitempty"`
	Trades      []string `json:"trades,omitempty"`
}

// WorkOrderItem is one priced activity of a work order
type WorkOrderItem struct {
	BOQItemID   string          `json:"boqItemId,omitempty"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// WorkOrder awards work to a contractor
type WorkOrder struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	ProjectID        string          `json:"projectId"`
	ContractorID     string          `json:"contractorId"`
	Status           string          `json:"status"`
	StartDate        string          `json:"startDate,omitempty"`
	EndDate          string          `json:"endDate,omitempty"`
	Items            []WorkOrderItem `json:"items"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	RetentionPercent decimal.Decimal `json:"retentionPercent"`
	Terms            string          `json:"terms,omitempty"`
	Audit
}

// WorkOrderInput creates a work order
type WorkOrderInput struct {
	ProjectID        string          `json:"projectId"`
	ContractorID     string          `json:"contractorId"`
	StartDate        string          `json:"startDate,omitempty"`
	EndDate          string          `json:"endDate,omitempty"`
	Items            []WorkOrderItem `json:"items"`
	RetentionPercent decimal.Decimal `json:"retentionPercent"`
	Terms            string          `json:"terms,omitempty"`
}

// RABillItem is the measured progress of one work order item
type RABillItem struct {
	WorkOrderItemIndex int             `json:"workOrderItemIndex"`
	PreviousQuantity   decimal.Decimal `json:"previousQuantity"`
	CurrentQuantity    decimal.Decimal `json:"currentQuantity"`
	Amount             decimal.Decimal `json:"amount"`
}

// RABill is a running account bill raised against a work order
type RABill struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	WorkOrderID     string          `json:"workOrderId"`
	BillDate        string          `json:"billDate"`
	PeriodFrom      string          `json:"periodFrom,omitempty"`
	PeriodTo        string          `json:"periodTo,omitempty"`
	Items           []RABillItem    `json:"items"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	RetentionAmount decimal.Decimal `json:"retentionAmount"`
	Deductions      decimal.Decimal `json:"deductions"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	Status          string          `json:"status"`
	Audit
}

// RABillInput raises an RA bill
type RABillInput struct {
	WorkOrderID string          `json:"workOrderId"`
	BillDate    string          `json:"billDate"`
	PeriodFrom  string          `json:"periodFrom,omitempty"`
	PeriodTo    string          `json:"periodTo,omitempty"`
	Items       []RABillItem    `json:"items"`
	Deductions  decimal.Decimal `json:"deductions"`
}

// ContractsClient is a client for the /contracts endpoints
type ContractsClient struct {
	client *httpclient.Client
}

// NewContractsClient creates a new contracts client
func NewContractsClient(c *httpclient.Client) *ContractsClient {
	return &ContractsClient{client: c}
}

// ListContractors lists contractors
func (c *ContractsClient) ListContractors(ctx context.Context, params ListParams) (*Page[Contractor], error) {
	var page Page[Contractor]
	if err := c.client.Get(ctx, "/contracts/contractors", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list contractors: %w", err)
	}
	return &page, nil
}

// GetContractor retrieves a contractor
func (c *ContractsClient) GetContractor(ctx context.Context, id string) (*Contractor, error) {
	var out Contractor
	if err := c.client.Get(ctx, resource("/contracts/contractors", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get contractor: %w", err)
	}
	return &out, nil
}

// CreateContractor creates a contractor
func (c *ContractsClient) CreateContractor(ctx context.Context, in *ContractorInput) (*Contractor, error) {
	var out Contractor
	if err := c.client.Post(ctx, "/contracts/contractors", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create contractor: %w", err)
	}
	return &out, nil
}

// UpdateContractor updates a contractor
func (c *ContractsClient) UpdateContractor(ctx context.Context, id string, in *ContractorInput) (*Contractor, error) {
	var out Contractor
	if err := c.client.Put(ctx, resource("/contracts/contractors", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update contractor: %w", err)
	}
	return &out, nil
}

// ListWorkOrders lists work orders
func (c *ContractsClient) ListWorkOrders(ctx context.Context, params ListParams) (*Page[WorkOrder], error) {
	var page Page[WorkOrder]
	if err := c.client.Get(ctx, "/contracts/work-orders", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	return &page, nil
}

// GetWorkOrder retrieves a work order
func (c *ContractsClient) GetWorkOrder(ctx context.Context, id string) (*WorkOrder, error) {
	var out WorkOrder
	if err := c.client.Get(ctx, resource("/contracts/work-orders", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return &out, nil
}

// CreateWorkOrder creates a work order
func (c *ContractsClient) CreateWorkOrder(ctx context.Context, in *WorkOrderInput) (*WorkOrder, error) {
	var out WorkOrder
	if err := c.client.Post(ctx, "/contracts/work-orders", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create work order: %w", err)
	}
	return &out, nil
}

// ApproveWorkOrder approves a work order
func (c *ContractsClient) ApproveWorkOrder(ctx context.Context, id, remarks string) (*WorkOrder, error) {
	var out WorkOrder
	if err := c.client.Post(ctx, resource("/contracts/work-orders", id, "approve"), Remarks{Remarks: remarks}, &out); err != nil {
		return nil, fmt.Errorf("failed to approve work order: %w", err)
	}
	return &out, nil
}

// ListRABills lists the RA bills of a work order
func (c *ContractsClient) ListRABills(ctx context.Context, workOrderID string) ([]RABill, error) {
	var out []RABill
	if err := c.client.Get(ctx, resource("/contracts/work-orders", workOrderID, "ra-bills"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list RA bills: %w", err)
	}
	return out, nil
}

// CreateRABill raises an RA bill
func (c *ContractsClient) CreateRABill(ctx context.Context, in *RABillInput) (*RABill, error) {
	var out RABill
	if err := c.client.Post(ctx, "/contracts/ra-bills", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create RA bill: %w", err)
	}
	return &out, nil
}

// ApproveRABill approves an RA bill
func (c *ContractsClient) ApproveRABill(ctx context.Context, id, remarks string) (*RABill, error) {
	var out RABill
	if err := c.client.Post(ctx, resource("/contracts/ra-bills", id, "approve"), Remarks{Remarks: remarks}, &out); err != nil {
		return nil, fmt.Errorf("failed to approve RA bill: %w", err)
	}
	return &out, nil
}
