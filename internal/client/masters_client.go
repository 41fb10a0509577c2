package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// MasterKind names a master data table
type MasterKind string

const (
	MasterMaterials  MasterKind = "materials"
	MasterUnits      MasterKind = "units"
	MasterCategories MasterKind = "categories"
	MasterWarehouses MasterKind = "warehouses"
	MasterCostHeads  MasterKind = "cost-heads"
)

// MasterKinds lists every supported master kind
var MasterKinds = []MasterKind{MasterMaterials, MasterUnits, MasterCategories, MasterWarehouses, MasterCostHeads}

// Valid reports whether k is a known master kind
func (k MasterKind) Valid() bool {
	for _, known := range MasterKinds {
		if k == known {
			return true
		}
	}
	return false
}

// MasterRecord is a master data row. Common fields are typed; the rest stay in Attributes.
type MasterRecord struct {
	ID         string                     `json:"id"`
	Code       string                     `json:"code"`
	Name       string                     `json:"name"`
	IsActive   bool                       `json:"isActive"`
	Attributes map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown fields in Attributes
func (r *MasterRecord) UnmarshalJSON(data []byte) error {
	type plain MasterRecord
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"id", "code", "name", "isActive"} {
		delete(all, k)
	}
	if len(all) > 0 {
		r.Attributes = all
	}
	return nil
}

// MarshalJSON flattens Attributes next to the typed fields
func (r MasterRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+4)
	for k, v := range r.Attributes {
		out[k] = v
	}
	if r.ID != "" {
		out["id"] = r.ID
	}
	out["code"] = r.Code
	out["name"] = r.Name
	out["isActive"] = r.IsActive
	return json.Marshal(out)
}

// MastersClient is a client for the /masters endpoints
type MastersClient struct {
	client *httpclient.Client
}

// NewMastersClient creates a new masters client
func NewMastersClient(c *httpclient.Client) *MastersClient {
	return &MastersClient{client: c}
}

func (c *MastersClient) path(kind MasterKind, parts ...string) (string, error) {
	if !kind.Valid() {
		return "", errors.InvalidInput("kind", fmt.Sprintf("unknown master kind %q", kind))
	}
	return resource("/masters/"+string(kind), parts...), nil
}

// List lists records of a master kind
func (c *MastersClient) List(ctx context.Context, kind MasterKind, params ListParams) (*Page[MasterRecord], error) {
	path, err := c.path(kind)
	if err != nil {
		return nil, err
	}
	var page Page[MasterRecord]
	if err := c.client.Get(ctx, path, params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return &page, nil
}

// Get retrieves a master record
func (c *MastersClient) Get(ctx context.Context, kind MasterKind, id string) (*MasterRecord, error) {
	path, err := c.path(kind, id)
	if err != nil {
		return nil, err
	}
	var out MasterRecord
	if err := c.client.Get(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", kind, err)
	}
	return &out, nil
}

// Create creates a master record
func (c *MastersClient) Create(ctx context.Context, kind MasterKind, in *MasterRecord) (*MasterRecord, error) {
	path, err := c.path(kind)
	if err != nil {
		return nil, err
	}
	var out MasterRecord
	if err := c.client.Post(ctx, path, in, &out); err != nil {
		return nil, fmt.Errorf("failed to create %s record: %w", kind, err)
	}
	return &out, nil
}

// Update updates a master record
func (c *MastersClient) Update(ctx context.Context, kind MasterKind, id string, in *MasterRecord) (*MasterRecord, error) {
	path, err := c.path(kind, id)
	if err != nil {
		return nil, err
	}
	var out MasterRecord
	if err := c.client.Put(ctx, path, in, &out); err != nil {
		return nil, fmt.Errorf("failed to update %s record: %w", kind, err)
	}
	return &out, nil
}

// Delete removes a master record
func (c *MastersClient) Delete(ctx context.Context, kind MasterKind, id string) error {
	path, err := c.path(kind, id)
	if err != nil {
		return err
	}
	if err := c.client.Delete(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", kind, err)
	}
	return nil
}
