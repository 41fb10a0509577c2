package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// GRNLine is one received material
type GRNLine struct {
	MaterialID       string          `json:"materialId"`
	OrderedQuantity  decimal.Decimal `json:"orderedQuantity"`
	ReceivedQuantity decimal.Decimal `json:"receivedQuantity"`
	AcceptedQuantity decimal.Decimal `json:"acceptedQuantity"`
	RejectedQuantity decimal.Decimal `json:"rejectedQuantity"`
	Remarks          string          `json:"remarks,omitempty"`
}

// GRN is a goods receipt note
type GRN struct {
	ID              string    `json:"id"`
	Number          string    `json:"number"`
	ProjectID       string    `json:"projectId"`
	PurchaseOrderID string    `json:"purchaseOrderId"`
	WarehouseID     string    `json:"warehouseId,omitempty"`
	ReceivedDate    string    `json:"receivedDate"`
	ChallanNumber   string    `json:"challanNumber,omitempty"`
	VehicleNumber   string    `json:"vehicleNumber,omitempty"`
	Lines           []GRNLine `json:"lines"`
	Status          string    `json:"status"`
	Audit
}

// GRNInput records a goods receipt
type GRNInput struct {
	ProjectID       string    `json:"projectId"`
	PurchaseOrderID string    `json:"purchaseOrderId"`
	WarehouseID     string    `json:"warehouseId,omitempty"`
	ReceivedDate    string    `json:"receivedDate"`
	ChallanNumber   string    `json:"challanNumber,omitempty"`
	VehicleNumber   string    `json:"vehicleNumber,omitempty"`
	Lines           []GRNLine `json:"lines"`
}

// StockLine is a material quantity moved by an issue or transfer
type StockLine struct {
	MaterialID string          `json:"materialId"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty"`
}

// MaterialIssue hands stock to a contractor or activity
type MaterialIssue struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	ProjectID    string      `json:"projectId"`
	IssuedTo     string      `json:"issuedTo"`
	ContractorID string      `json:"contractorId,omitempty"`
	WorkOrderID  string      `json:"workOrderId,omitempty"`
	IssueDate    string      `json:"issueDate"`
	Lines        []StockLine `json:"lines"`
	Audit
}

// MaterialIssueInput records an issue
type MaterialIssueInput struct {
	ProjectID    string      `json:"projectId"`
	IssuedTo     string      `json:"issuedTo"`
	ContractorID string      `json:"contractorId,omitempty"`
	WorkOrderID  string      `json:"workOrderId,omitempty"`
	IssueDate    string      `json:"issueDate"`
	Lines        []StockLine `json:"lines"`
}

// StockTransfer moves stock between projects or stores
type StockTransfer struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"`
	FromProjectID string      `json:"fromProjectId"`
	ToProjectID   string      `json:"toProjectId"`
	TransferDate  string      `json:"transferDate"`
	Status        string      `json:"status"`
	Lines         []StockLine `json:"lines"`
	ReceivedAt    string      `json:"receivedAt,omitempty"`
	Audit
}

// StockTransferInput dispatches a transfer
type StockTransferInput struct {
	FromProjectID string      `json:"fromProjectId"`
	ToProjectID   string      `json:"toProjectId"`
	TransferDate  string      `json:"transferDate"`
	Lines         []StockLine `json:"lines"`
}

// QCInspection is a quality check of received material or executed work
type QCInspection struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	GRNID         string `json:"grnId,omitempty"`
	WorkOrderID   string `json:"workOrderId,omitempty"`
	Checklist     string `json:"checklist"`
	InspectorID   string `json:"inspectorId,omitempty"`
	InspectedDate string `json:"inspectedDate,omitempty"`
	Result        string `json:"result,omitempty"` // pass | fail | conditional
	Observations  string `json:"observations,omitempty"`
	Status        string `json:"status"`
	Audit
}

// QCInspectionInput schedules an inspection
type QCInspectionInput struct {
	ProjectID   string `json:"projectId"`
	GRNID       string `json:"grnId,omitempty"`
	WorkOrderID string `json:"workOrderId,omitempty"`
	Checklist   string `json:"checklist"`
	InspectorID string `json:"inspectorId,omitempty"`
}

// QCResultInput records an inspection outcome
type QCResultInput struct {
	Result        string `json:"result"`
	InspectedDate string `json:"inspectedDate"`
	Observations  string `json:"observations,omitempty"`
}

// StockBalance is the on-hand quantity of a material at a project
type StockBalance struct {
	ProjectID    string          `json:"projectId"`
	MaterialID   string          `json:"materialId"`
	MaterialName string          `json:"materialName"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
}

// SiteClient is a client for the /site endpoints
type SiteClient struct {
	client *httpclient.Client
}

// NewSiteClient creates a new site client
func NewSiteClient(c *httpclient.Client) *SiteClient {
	return &SiteClient{client: c}
}

// ListGRNs lists goods receipts
func (c *SiteClient) ListGRNs(ctx context.Context, params ListParams) (*Page[GRN], error) {
	var page Page[GRN]
	if err := c.client.Get(ctx, "/site/grn", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list GRNs: %w", err)
	}
	return &page, nil
}

// GetGRN retrieves a goods receipt
func (c *SiteClient) GetGRN(ctx context.Context, id string) (*GRN, error) {
	var out GRN
	if err := c.client.Get(ctx, resource("/site/grn", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get GRN: %w", err)
	}
	return &out, nil
}

// CreateGRN records a goods receipt
func (c *SiteClient) CreateGRN(ctx context.Context, in *GRNInput) (*GRN, error) {
	var out GRN
	if err := c.client.Post(ctx, "/site/grn", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create GRN: %w", err)
	}
	return &out, nil
}

// ListIssues lists material issues
func (c *SiteClient) ListIssues(ctx context.Context, params ListParams) (*Page[MaterialIssue], error) {
	var page Page[MaterialIssue]
	if err := c.client.Get(ctx, "/site/issues", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return &page, nil
}

// CreateIssue records a material issue
func (c *SiteClient) CreateIssue(ctx context.Context, in *MaterialIssueInput) (*MaterialIssue, error) {
	var out MaterialIssue
	if err := c.client.Post(ctx, "/site/issues", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return &out, nil
}

// ListTransfers lists stock transfers
func (c *SiteClient) ListTransfers(ctx context.Context, params ListParams) (*Page[StockTransfer], error) {
	var page Page[StockTransfer]
	if err := c.client.Get(ctx, "/site/transfers", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return &page, nil
}

// CreateTransfer dispatches a stock transfer
func (c *SiteClient) CreateTransfer(ctx context.Context, in *StockTransferInput) (*StockTransfer, error) {
	var out StockTransfer
	if err := c.client.Post(ctx, "/site/transfers", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	return &out, nil
}

// ReceiveTransfer acknowledges a transfer at the receiving end
func (c *SiteClient) ReceiveTransfer(ctx context.Context, id string) (*StockTransfer, error) {
	var out StockTransfer
	if err := c.client.Post(ctx, resource("/site/transfers", id, "receive"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to receive transfer: %w", err)
	}
	return &out, nil
}

// ListInspections lists QC inspections
func (c *SiteClient) ListInspections(ctx context.Context, params ListParams) (*Page[QCInspection], error) {
	var page Page[QCInspection]
	if err := c.client.Get(ctx, "/site/qc", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	return &page, nil
}

// CreateInspection schedules a QC inspection
func (c *SiteClient) CreateInspection(ctx context.Context, in *QCInspectionInput) (*QCInspection, error) {
	var out QCInspection
	if err := c.client.Post(ctx, "/site/qc", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}
	return &out, nil
}

// RecordInspectionResult records the outcome of an inspection
func (c *SiteClient) RecordInspectionResult(ctx context.Context, id string, in *QCResultInput) (*QCInspection, error) {
	var out QCInspection
	if err := c.client.Post(ctx, resource("/site/qc", id, "result"), in, &out); err != nil {
		return nil, fmt.Errorf("failed to record inspection result: %w", err)
	}
	return &out, nil
}

// StockBalances returns on-hand stock for a project
func (c *SiteClient) StockBalances(ctx context.Context, projectID string) ([]StockBalance, error) {
	var out []StockBalance
	if err := c.client.Get(ctx, resource("/site/stock", projectID), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get stock balances: %w", err)
	}
	return out, nil
}
