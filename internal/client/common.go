package client

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListParams are the filters every list endpoint understands
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	ProjectID string
	From      string // YYYY-MM-DD
	To        string // YYYY-MM-DD
	// Extra carries endpoint-specific filters.
	Extra url.Values
}

// Values encodes the params as a query string, skipping zero values
func (p ListParams) Values() url.Values {
	v := url.Values{}
	for k, vals := range p.Extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("limit", strconv.Itoa(p.PageSize))
	}
	setIf(v, "search", p.Search)
	setIf(v, "status", p.Status)
	setIf(v, "projectId", p.ProjectID)
	setIf(v, "from", p.From)
	setIf(v, "to", p.To)
	return v
}

// Page is a paginated list payload
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"limit"`
}

// Audit holds the bookkeeping fields most records carry
type Audit struct {
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remarks is the body of most approve/reject/submit actions
type Remarks struct {
	Remarks string `json:"remarks,omitempty"`
}

// resource joins path segments, escaping each one
func resource(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
