package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pesio-ai/erp-client/internal/client"
	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/logger"
)

// Prerequisites a requisition must meet before procurement can proceed
const (
	PrereqRequisitionApproved = "requisition approved"
	PrereqBudgetApproved      = "project budget approved"
	PrereqFinalEstimate       = "final estimate"
)

// ProcurementService gates RFQ and purchase order creation on the project's
// engineering state. The backend enforces the same rules; checking here
// saves a failed round trip and names every missing prerequisite at once.
type ProcurementService struct {
	purchase    client.PurchaseClientInterface
	engineering client.EngineeringClientInterface
	log         *logger.Logger
}

// NewProcurementService creates a new procurement service
func NewProcurementService(
	purchase client.PurchaseClientInterface,
	engineering client.EngineeringClientInterface,
	log *logger.Logger,
) *ProcurementService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProcurementService{
		purchase:    purchase,
		engineering: engineering,
		log:         log,
	}
}

// Readiness describes whether procurement may proceed for a requisition
type Readiness struct {
	RequisitionID       string   `json:"requisitionId,omitempty"`
	RequisitionNumber   string   `json:"requisitionNumber,omitempty"`
	ProjectID           string   `json:"projectId"`
	RequisitionApproved bool     `json:"requisitionApproved"`
	BudgetApproved      bool     `json:"budgetApproved"`
	FinalEstimate       bool     `json:"finalEstimate"`
	Missing             []string `json:"missing,omitempty"`
}

// Ready reports whether every prerequisite is met
func (r *Readiness) Ready() bool {
	return len(r.Missing) == 0
}

func (r *Readiness) err() error {
	if r.Ready() {
		return nil
	}
	subject := "project " + r.ProjectID
	if r.RequisitionNumber != "" {
		subject = "requisition " + r.RequisitionNumber
	} else if r.RequisitionID != "" {
		subject = "requisition " + r.RequisitionID
	}
	return errors.New(errors.ErrCodePrecondition,
		fmt.Sprintf("%s is not ready for procurement: missing %s", subject, strings.Join(r.Missing, ", ")))
}

// RequisitionReadiness evaluates a requisition and its project
func (s *ProcurementService) RequisitionReadiness(ctx context.Context, requisitionID string) (*Readiness, error) {
	if strings.TrimSpace(requisitionID) == "" {
		return nil, errors.InvalidInput("requisitionId", "requisition is required")
	}

	mr, err := s.purchase.GetRequisition(ctx, requisitionID)
	if err != nil {
		return nil, err
	}

	r := &Readiness{
		RequisitionID:       mr.ID,
		RequisitionNumber:   mr.Number,
		ProjectID:           mr.ProjectID,
		RequisitionApproved: mr.Status == client.RequisitionApproved,
	}
	if !r.RequisitionApproved {
		r.Missing = append(r.Missing, PrereqRequisitionApproved)
	}
	if err := s.checkProject(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ProjectReadiness evaluates only the project-level prerequisites
func (s *ProcurementService) ProjectReadiness(ctx context.Context, projectID string) (*Readiness, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.InvalidInput("projectId", "project is required")
	}
	r := &Readiness{ProjectID: projectID, RequisitionApproved: true}
	if err := s.checkProject(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ProcurementService) checkProject(ctx context.Context, r *Readiness) error {
	budget, err := s.engineering.GetBudget(ctx, r.ProjectID)
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		// no budget yet
	case err != nil:
		return err
	default:
		r.BudgetApproved = budget.Status == client.BudgetApproved
	}
	if !r.BudgetApproved {
		r.Missing = append(r.Missing, PrereqBudgetApproved)
	}

	estimates, err := s.engineering.ListEstimates(ctx, r.ProjectID)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return err
	}
	for _, e := range estimates {
		if e.Status == client.EstimateFinal {
			r.FinalEstimate = true
			break
		}
	}
	if !r.FinalEstimate {
		r.Missing = append(r.Missing, PrereqFinalEstimate)
	}
	return nil
}

// CreateRFQ creates an RFQ once its requisition is ready
func (s *ProcurementService) CreateRFQ(ctx context.Context, in *client.RFQInput) (*client.RFQ, error) {
	if in == nil {
		return nil, errors.InvalidInput("rfq", "request is required")
	}
	if len(in.SupplierIDs) == 0 {
		return nil, errors.InvalidInput("supplierIds", "at least one supplier is required")
	}
	if in.DueDate != "" {
		if _, err := time.Parse("2006-01-02", in.DueDate); err != nil {
			return nil, errors.InvalidInput("dueDate", "invalid date format, expected YYYY-MM-DD")
		}
	}

	readiness, err := s.RequisitionReadiness(ctx, in.RequisitionID)
	if err != nil {
		return nil, err
	}
	if err := readiness.err(); err != nil {
		s.log.Warn().
			Str("requisition_id", in.RequisitionID).
			Strs("missing", readiness.Missing).
			Msg("RFQ blocked by missing prerequisites")
		return nil, err
	}

	rfq, err := s.purchase.CreateRFQ(ctx, in)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("rfq_id", rfq.ID).
		Str("requisition_id", in.RequisitionID).
		Int("suppliers", len(in.SupplierIDs)).
		Msg("RFQ created")

	return rfq, nil
}

// CreatePurchaseOrder creates a purchase order once its requisition, or its
// project when raised without one, is ready
func (s *ProcurementService) CreatePurchaseOrder(ctx context.Context, in *client.PurchaseOrderInput) (*client.PurchaseOrder, error) {
	if err := validatePurchaseOrder(in); err != nil {
		return nil, err
	}

	var (
		readiness *Readiness
		err       error
	)
	if in.RequisitionID != "" {
		readiness, err = s.RequisitionReadiness(ctx, in.RequisitionID)
		if err == nil && readiness.ProjectID != in.ProjectID {
			return nil, errors.InvalidInput("projectId", "project does not match the requisition's project")
		}
	} else {
		readiness, err = s.ProjectReadiness(ctx, in.ProjectID)
	}
	if err != nil {
		return nil, err
	}
	if err := readiness.err(); err != nil {
		s.log.Warn().
			Str("project_id", in.ProjectID).
			Str("requisition_id", in.RequisitionID).
			Strs("missing", readiness.Missing).
			Msg("Purchase order blocked by missing prerequisites")
		return nil, err
	}

	po, err := s.purchase.CreatePurchaseOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("po_id", po.ID).
		Str("po_number", po.Number).
		Str("supplier_id", in.SupplierID).
		Str("total", po.TotalAmount.StringFixed(2)).
		Msg("Purchase order created")

	return po, nil
}

func validatePurchaseOrder(in *client.PurchaseOrderInput) error {
	if in == nil {
		return errors.InvalidInput("purchaseOrder", "request is required")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return errors.InvalidInput("projectId", "project is required")
	}
	if strings.TrimSpace(in.SupplierID) == "" {
		return errors.InvalidInput("supplierId", "supplier is required")
	}
	if len(in.Lines) == 0 {
		return errors.InvalidInput("lines", "purchase order must have at least 1 line")
	}
	for i, line := range in.Lines {
		if line.MaterialID == "" {
			return errors.InvalidInput(fmt.Sprintf("lines[%d].materialId", i), "material is required")
		}
		if !line.Quantity.IsPositive() {
			return errors.InvalidInput(fmt.Sprintf("lines[%d].quantity", i), "quantity must be positive")
		}
		if line.Rate.IsNegative() {
			return errors.InvalidInput(fmt.Sprintf("lines[%d].rate", i), "rate cannot be negative")
		}
	}
	if in.DeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", in.DeliveryDate); err != nil {
			return errors.InvalidInput("deliveryDate", "invalid date format, expected YYYY-MM-DD")
		}
	}
	return nil
}
