package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Partner is a profit-sharing partner in a project
type Partner struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	SharePercent decimal.Decimal `json:"sharePercent"`
	ProjectIDs   []string        `json:"projectIds,omitempty"`
	IsActive     bool            `json:"isActive"`
	Audit
}

// PartnerInput creates or updates a partner
type PartnerInput struct {
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	SharePercent decimal.Decimal `json:"sharePercent"`
	ProjectIDs   []string        `json:"projectIds,omitempty"`
}

// ProfitEvent is a realized profit to be shared among partners
type ProfitEvent struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	EventDate     string          `json:"eventDate"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"` // pending | distributed
	DistributedAt string          `json:"distributedAt,omitempty"`
	Audit
}

// ProfitEventInput records a profit event
type ProfitEventInput struct {
	ProjectID   string          `json:"projectId"`
	EventDate   string          `json:"eventDate"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProfitShare is one partner's portion of a profit event
type ProfitShare struct {
	ID            string          `json:"id"`
	ProfitEventID string          `json:"profitEventId"`
	PartnerID     string          `json:"partnerId"`
	PartnerName   string          `json:"partnerName,omitempty"`
	SharePercent  decimal.Decimal `json:"sharePercent"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          bool            `json:"paid"`
}

// PartnersClient is a client for the /partners endpoints
type PartnersClient struct {
	client *httpclient.Client
}

// NewPartnersClient creates a new partners client
func NewPartnersClient(c *httpclient.Client) *PartnersClient {
	return &PartnersClient{client: c}
}

// ListPartners lists partners
func (c *PartnersClient) ListPartners(ctx context.Context, params ListParams) (*Page[Partner], error) {
	var page Page[Partner]
	if err := c.client.Get(ctx, "/partners", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return &page, nil
}

// GetPartner retrieves a partner
func (c *PartnersClient) GetPartner(ctx context.Context, id string) (*Partner, error) {
	var out Partner
	if err := c.client.Get(ctx, resource("/partners", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return &out, nil
}

// CreatePartner creates a partner
func (c *PartnersClient) CreatePartner(ctx context.Context, in *PartnerInput) (*Partner, error) {
	var out Partner
	if err := c.client.Post(ctx, "/partners", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	return &out, nil
}

// UpdatePartner updates a partner
func (c *PartnersClient) UpdatePartner(ctx context.Context, id string, in *PartnerInput) (*Partner, error) {
	var out Partner
	if err := c.client.Put(ctx, resource("/partners", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	return &out, nil
}

// ListProfitEvents lists profit events
func (c *PartnersClient) ListProfitEvents(ctx context.Context, params ListParams) (*Page[ProfitEvent], error) {
	var page Page[ProfitEvent]
	if err := c.client.Get(ctx, "/partners/profit-events", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list profit events: %w", err)
	}
	return &page, nil
}

// CreateProfitEvent records a profit event
func (c *PartnersClient) CreateProfitEvent(ctx context.Context, in *ProfitEventInput) (*ProfitEvent, error) {
	var out ProfitEvent
	if err := c.client.Post(ctx, "/partners/profit-events", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create profit event: %w", err)
	}
	return &out, nil
}

// DistributeProfit splits a profit event into partner shares
func (c *PartnersClient) DistributeProfit(ctx context.Context, eventID string) ([]ProfitShare, error) {
	var out []ProfitShare
	if err := c.client.Post(ctx, resource("/partners/profit-events", eventID, "distribute"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to distribute profit: %w", err)
	}
	return out, nil
}

// ListShares lists the shares of a profit event
func (c *PartnersClient) ListShares(ctx context.Context, eventID string) ([]ProfitShare, error) {
	var out []ProfitShare
	if err := c.client.Get(ctx, resource("/partners/profit-events", eventID, "shares"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list profit shares: %w", err)
	}
	return out, nil
}
