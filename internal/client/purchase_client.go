package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Requisition statuses
const (
	RequisitionDraft     = "draft"
	RequisitionSubmitted = "submitted"
	RequisitionApproved  = "approved"
	RequisitionRejected  = "rejected"
	RequisitionClosed    = "closed"
)

// Supplier is a vendor of materials or services
type Supplier struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	ContactName  string   `json:"contactName,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	GSTIN        string   `json:"gstin,omitempty"`
	Address      string   `json:"address,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	PaymentTerms string   `json:"paymentTerms,omitempty"`
	IsActive     bool     `json:"isActive"`
	Audit
}

// SupplierInput creates or updates a supplier
type SupplierInput struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	ContactName  string   `json:"contactName,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	GSTIN        string   `json:"gstin,omitempty"`
	Address      string   `json:"address,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	PaymentTerms string   `json:"paymentTerms,omitempty"`
}

// RequisitionLine is one requested material
type RequisitionLine struct {
	MaterialID   string          `json:"materialId"`
	MaterialName string          `json:"materialName,omitempty"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	RequiredBy   string          `json:"requiredBy,omitempty"`
	BOQItemID    string          `json:"boqItemId,omitempty"`
	Remarks      string          `json:"remarks,omitempty"`
}

// MaterialRequisition is a site's request for materials
type MaterialRequisition struct {
	ID          string            `json:"id"`
	Number      string            `json:"number"`
	ProjectID   string            `json:"projectId"`
	ProjectName string            `json:"projectName,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority,omitempty"`
	RequestedBy string            `json:"requestedBy,omitempty"`
	Lines       []RequisitionLine `json:"lines"`
	Remarks     string            `json:"remarks,omitempty"`
	Audit
}

// RequisitionInput creates a requisition
type RequisitionInput struct {
	ProjectID string            `json:"projectId"`
	Priority  string            `json:"priority,omitempty"`
	Lines     []RequisitionLine `json:"lines"`
	Remarks   string            `json:"remarks,omitempty"`
}

// RFQ is a request for quotation raised from a requisition
type RFQ struct {
	ID            string            `json:"id"`
	Number        string            `json:"number"`
	RequisitionID string            `json:"requisitionId"`
	ProjectID     string            `json:"projectId"`
	SupplierIDs   []string          `json:"supplierIds"`
	DueDate       string            `json:"dueDate"`
	Status        string            `json:"status"`
	Lines         []RequisitionLine `json:"lines"`
	Terms         string            `json:"terms,omitempty"`
	Audit
}

// RFQInput creates an RFQ
type RFQInput struct {
	RequisitionID string   `json:"requisitionId"`
	SupplierIDs   []string `json:"supplierIds"`
	DueDate       string   `json:"dueDate"`
	Terms         string   `json:"terms,omitempty"`
}

// QuotationLine is a supplier's price for one material
type QuotationLine struct {
	MaterialID string          `json:"materialId"`
	Quantity   decimal.Decimal `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	TaxPercent decimal.Decimal `json:"taxPercent"`
	Amount     decimal.Decimal `json:"amount"`
}

// Quotation is a supplier's response to an RFQ
type Quotation struct {
	ID            string          `json:"id"`
	RFQID         string          `json:"rfqId"`
	SupplierID    string          `json:"supplierId"`
	SupplierName  string          `json:"supplierName,omitempty"`
	Lines         []QuotationLine `json:"lines"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	DeliveryDays  int             `json:"deliveryDays,omitempty"`
	ValidUntil    string          `json:"validUntil,omitempty"`
	PaymentTerms  string          `json:"paymentTerms,omitempty"`
	AttachmentURL string          `json:"attachmentUrl,omitempty"`
	Audit
}

// QuotationInput records a supplier quotation
type QuotationInput struct {
	RFQID        string          `json:"rfqId"`
	SupplierID   string          `json:"supplierId"`
	Lines        []QuotationLine `json:"lines"`
	DeliveryDays int             `json:"deliveryDays,omitempty"`
	ValidUntil   string          `json:"validUntil,omitempty"`
	PaymentTerms string          `json:"paymentTerms,omitempty"`
}

// ComparativeRow compares supplier rates for one material
type ComparativeRow struct {
	MaterialID   string                     `json:"materialId"`
	MaterialName string                     `json:"materialName,omitempty"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	LowestBy     string                     `json:"lowestBy,omitempty"`
}

// ComparativeStatement compares all quotations of an RFQ
type ComparativeStatement struct {
	ID                 string           `json:"id"`
	RFQID              string           `json:"rfqId"`
	Rows               []ComparativeRow `json:"rows"`
	SelectedSupplierID string           `json:"selectedSupplierId,omitempty"`
	Status             string           `json:"status"`
	Justification      string           `json:"justification,omitempty"`
	Audit
}

// SelectSupplierInput approves a comparative statement for one supplier
type SelectSupplierInput struct {
	SupplierID    string `json:"supplierId"`
	Justification string `json:"justification,omitempty"`
}

// PurchaseOrderLine is one ordered material
type PurchaseOrderLine struct {
	MaterialID string          `json:"materialId"`
	Unit       string          `json:"unit,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	TaxPercent decimal.Decimal `json:"taxPercent"`
	Amount     decimal.Decimal `json:"amount"`
}

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	ProjectID       string              `json:"projectId"`
	SupplierID      string              `json:"supplierId"`
	RequisitionID   string              `json:"requisitionId,omitempty"`
	QuotationID     string              `json:"quotationId,omitempty"`
	Status          string              `json:"status"`
	Lines           []PurchaseOrderLine `json:"lines"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	DeliveryDate    string              `json:"deliveryDate,omitempty"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty"`
	Terms           string              `json:"terms,omitempty"`
	Audit
}

// PurchaseOrderInput creates a purchase order
type PurchaseOrderInput struct {
	ProjectID       string              `json:"projectId"`
	SupplierID      string              `json:"supplierId"`
	RequisitionID   string              `json:"requisitionId,omitempty"`
	QuotationID     string              `json:"quotationId,omitempty"`
	Lines           []PurchaseOrderLine `json:"lines"`
	DeliveryDate    string              `json:"deliveryDate,omitempty"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty"`
	Terms           string              `json:"terms,omitempty"`
}

// PurchaseBill is a supplier invoice against a purchase order
type PurchaseBill struct {
	ID            string          `json:"id"`
	BillNumber    string          `json:"billNumber"`
	PurchaseOrder string          `json:"purchaseOrderId"`
	SupplierID    string          `json:"supplierId"`
	BillDate      string          `json:"billDate"`
	GRNIDs        []string        `json:"grnIds,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	Audit
}

// PurchaseBillInput records a supplier bill
type PurchaseBillInput struct {
	BillNumber      string          `json:"billNumber"`
	PurchaseOrderID string          `json:"purchaseOrderId"`
	BillDate        string          `json:"billDate"`
	GRNIDs          []string        `json:"grnIds,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
}

// PurchaseClient is a client for the /purchase endpoints
type PurchaseClient struct {
	client *httpclient.Client
}

// NewPurchaseClient creates a new purchase client
func NewPurchaseClient(c *httpclient.Client) *PurchaseClient {
	return &PurchaseClient{client: c}
}

// ListSuppliers lists suppliers
func (c *PurchaseClient) ListSuppliers(ctx context.Context, params ListParams) (*Page[Supplier], error) {
	var page Page[Supplier]
	if err := c.client.Get(ctx, "/purchase/suppliers", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return &page, nil
}

// GetSupplier retrieves a supplier
func (c *PurchaseClient) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	var s Supplier
	if err := c.client.Get(ctx, resource("/purchase/suppliers", id), nil, &s); err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return &s, nil
}

// CreateSupplier creates a supplier
func (c *PurchaseClient) CreateSupplier(ctx context.Context, in *SupplierInput) (*Supplier, error) {
	var s Supplier
	if err := c.client.Post(ctx, "/purchase/suppliers", in, &s); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return &s, nil
}

// UpdateSupplier updates a supplier
func (c *PurchaseClient) UpdateSupplier(ctx context.Context, id string, in *SupplierInput) (*Supplier, error) {
	var s Supplier
	if err := c.client.Put(ctx, resource("/purchase/suppliers", id), in, &s); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return &s, nil
}

// ListRequisitions lists material requisitions
func (c *PurchaseClient) ListRequisitions(ctx context.Context, params ListParams) (*Page[MaterialRequisition], error) {
	var page Page[MaterialRequisition]
	if err := c.client.Get(ctx, "/purchase/requisitions", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	return &page, nil
}

// GetRequisition retrieves a material requisition
func (c *PurchaseClient) GetRequisition(ctx context.Context, id string) (*MaterialRequisition, error) {
	var mr MaterialRequisition
	if err := c.client.Get(ctx, resource("/purchase/requisitions", id), nil, &mr); err != nil {
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}
	return &mr, nil
}

// CreateRequisition creates a draft requisition
func (c *PurchaseClient) CreateRequisition(ctx context.Context, in *RequisitionInput) (*MaterialRequisition, error) {
	var mr MaterialRequisition
	if err := c.client.Post(ctx, "/purchase/requisitions", in, &mr); err != nil {
		return nil, fmt.Errorf("failed to create requisition: %w", err)
	}
	return &mr, nil
}

// SubmitRequisition sends a requisition for approval
func (c *PurchaseClient) SubmitRequisition(ctx context.Context, id string) (*MaterialRequisition, error) {
	return c.requisitionAction(ctx, id, "submit", "")
}

// ApproveRequisition approves a requisition
func (c *PurchaseClient) ApproveRequisition(ctx context.Context, id, remarks string) (*MaterialRequisition, error) {
	return c.requisitionAction(ctx, id, "approve", remarks)
}

// RejectRequisition rejects a requisition
func (c *PurchaseClient) RejectRequisition(ctx context.Context, id, remarks string) (*MaterialRequisition, error) {
	return c.requisitionAction(ctx, id, "reject", remarks)
}

func (c *PurchaseClient) requisitionAction(ctx context.Context, id, action, remarks string) (*MaterialRequisition, error) {
	var mr MaterialRequisition
	if err := c.client.Post(ctx, resource("/purchase/requisitions", id, action), Remarks{Remarks: remarks}, &mr); err != nil {
		return nil, fmt.Errorf("failed to %s requisition: %w", action, err)
	}
	return &mr, nil
}

// ListRFQs lists RFQs
func (c *PurchaseClient) ListRFQs(ctx context.Context, params ListParams) (*Page[RFQ], error) {
	var page Page[RFQ]
	if err := c.client.Get(ctx, "/purchase/rfqs", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list RFQs: %w", err)
	}
	return &page, nil
}

// GetRFQ retrieves an RFQ
func (c *PurchaseClient) GetRFQ(ctx context.Context, id string) (*RFQ, error) {
	var rfq RFQ
	if err := c.client.Get(ctx, resource("/purchase/rfqs", id), nil, &rfq); err != nil {
		return nil, fmt.Errorf("failed to get RFQ: %w", err)
	}
	return &rfq, nil
}

// CreateRFQ raises an RFQ from a requisition
func (c *PurchaseClient) CreateRFQ(ctx context.Context, in *RFQInput) (*RFQ, error) {
	var rfq RFQ
	if err := c.client.Post(ctx, "/purchase/rfqs", in, &rfq); err != nil {
		return nil, fmt.Errorf("failed to create RFQ: %w", err)
	}
	return &rfq, nil
}

// SendRFQ emails an RFQ to its suppliers
func (c *PurchaseClient) SendRFQ(ctx context.Context, id string) (*RFQ, error) {
	var rfq RFQ
	if err := c.client.Post(ctx, resource("/purchase/rfqs", id, "send"), nil, &rfq); err != nil {
		return nil, fmt.Errorf("failed to send RFQ: %w", err)
	}
	return &rfq, nil
}

// ListQuotations lists the quotations received for an RFQ
func (c *PurchaseClient) ListQuotations(ctx context.Context, rfqID string) ([]Quotation, error) {
	var out []Quotation
	if err := c.client.Get(ctx, resource("/purchase/rfqs", rfqID, "quotations"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	return out, nil
}

// CreateQuotation records a supplier quotation
func (c *PurchaseClient) CreateQuotation(ctx context.Context, in *QuotationInput) (*Quotation, error) {
	var q Quotation
	if err := c.client.Post(ctx, "/purchase/quotations", in, &q); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}
	return &q, nil
}

// UploadQuotationAttachment attaches the supplier's quotation document
func (c *PurchaseClient) UploadQuotationAttachment(ctx context.Context, quotationID, fileName, contentType string, data []byte) (*Quotation, error) {
	form := &httpclient.FormData{
		Files: []httpclient.FormFile{{Field: "file", FileName: fileName, ContentType: contentType, Data: data}},
	}

	var q Quotation
	if err := c.client.PostForm(ctx, resource("/purchase/quotations", quotationID, "attachments"), form, &q); err != nil {
		return nil, fmt.Errorf("failed to upload quotation attachment: %w", err)
	}
	return &q, nil
}

// GetComparativeStatement retrieves the comparative statement of an RFQ
func (c *PurchaseClient) GetComparativeStatement(ctx context.Context, rfqID string) (*ComparativeStatement, error) {
	var cs ComparativeStatement
	if err := c.client.Get(ctx, resource("/purchase/rfqs", rfqID, "comparative"), nil, &cs); err != nil {
		return nil, fmt.Errorf("failed to get comparative statement: %w", err)
	}
	return &cs, nil
}

// GenerateComparativeStatement builds the comparative statement from the
// quotations received so far
func (c *PurchaseClient) GenerateComparativeStatement(ctx context.Context, rfqID string) (*ComparativeStatement, error) {
	var cs ComparativeStatement
	if err := c.client.Post(ctx, resource("/purchase/rfqs", rfqID, "comparative"), nil, &cs); err != nil {
		return nil, fmt.Errorf("failed to generate comparative statement: %w", err)
	}
	return &cs, nil
}

// ApproveComparativeStatement selects the winning supplier
func (c *PurchaseClient) ApproveComparativeStatement(ctx context.Context, id string, in *SelectSupplierInput) (*ComparativeStatement, error) {
	var cs ComparativeStatement
	if err := c.client.Post(ctx, resource("/purchase/comparatives", id, "approve"), in, &cs); err != nil {
		return nil, fmt.Errorf("failed to approve comparative statement: %w", err)
	}
	return &cs, nil
}

// ListPurchaseOrders lists purchase orders
func (c *PurchaseClient) ListPurchaseOrders(ctx context.Context, params ListParams) (*Page[PurchaseOrder], error) {
	var page Page[PurchaseOrder]
	if err := c.client.Get(ctx, "/purchase/orders", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return &page, nil
}

// GetPurchaseOrder retrieves a purchase order
func (c *PurchaseClient) GetPurchaseOrder(ctx context.Context, id string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := c.client.Get(ctx, resource("/purchase/orders", id), nil, &po); err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return &po, nil
}

// CreatePurchaseOrder creates a purchase order
func (c *PurchaseClient) CreatePurchaseOrder(ctx context.Context, in *PurchaseOrderInput) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := c.client.Post(ctx, "/purchase/orders", in, &po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}
	return &po, nil
}

// ApprovePurchaseOrder approves a purchase order
func (c *PurchaseClient) ApprovePurchaseOrder(ctx context.Context, id, remarks string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := c.client.Post(ctx, resource("/purchase/orders", id, "approve"), Remarks{Remarks: remarks}, &po); err != nil {
		return nil, fmt.Errorf("failed to approve purchase order: %w", err)
	}
	return &po, nil
}

// CancelPurchaseOrder cancels a purchase order
func (c *PurchaseClient) CancelPurchaseOrder(ctx context.Context, id, reason string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	if err := c.client.Post(ctx, resource("/purchase/orders", id, "cancel"), Remarks{Remarks: reason}, &po); err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order: %w", err)
	}
	return &po, nil
}

// ListBills lists supplier bills
func (c *PurchaseClient) ListBills(ctx context.Context, params ListParams) (*Page[PurchaseBill], error) {
	var page Page[PurchaseBill]
	if err := c.client.Get(ctx, "/purchase/bills", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return &page, nil
}

// CreateBill records a supplier bill
func (c *PurchaseClient) CreateBill(ctx context.Context, in *PurchaseBillInput) (*PurchaseBill, error) {
	var b PurchaseBill
	if err := c.client.Post(ctx, "/purchase/bills", in, &b); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return &b, nil
}

// ApproveBill approves a supplier bill for payment
func (c *PurchaseClient) ApproveBill(ctx context.Context, id, remarks string) (*PurchaseBill, error) {
	var b PurchaseBill
	if err := c.client.Post(ctx, resource("/purchase/bills", id, "approve"), Remarks{Remarks: remarks}, &b); err != nil {
		return nil, fmt.Errorf("failed to approve bill: %w", err)
	}
	return &b, nil
}
