package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/erp-client/internal/httpclient"
)

// Journal statuses
const (
	JournalDraft    = "draft"
	JournalPosted   = "posted"
	JournalReversed = "reversed"
)

// Account represents a GL account
type Account struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	AccountType   string `json:"accountType"` // asset | liability | equity | income | expense
	NormalBalance string `json:"normalBalance"`
	ParentID      string `json:"parentId,omitempty"`
	IsActive      bool   `json:"isActive"`
	AllowPosting  bool   `json:"allowPosting"`
	Audit
}

// AccountInput creates or updates a GL account
type AccountInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	AccountType  string `json:"accountType"`
	ParentID     string `json:"parentId,omitempty"`
	AllowPosting bool   `json:"allowPosting"`
}

// JournalLine is one debit or credit of a journal
type JournalLine struct {
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountId"`
	LineType    string          `json:"lineType"` // "debit" or "credit"
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	ProjectID   string          `json:"projectId,omitempty"`
	CostHead    string          `json:"costHead,omitempty"`
}

// Journal represents a journal entry
type Journal struct {
	ID            string          `json:"id"`
	JournalNumber string          `json:"journalNumber"`
	JournalDate   string          `json:"journalDate"`
	JournalType   string          `json:"journalType"`
	Description   string          `json:"description,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Status        string          `json:"status"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Lines         []JournalLine   `json:"lines"`
	ReversalOf    string          `json:"reversalOf,omitempty"`
	Audit
}

// JournalInput creates a journal entry
type JournalInput struct {
	JournalDate string        `json:"journalDate"`
	JournalType string        `json:"journalType"`
	Description string        `json:"description,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Lines       []JournalLine `json:"lines"`
}

// ReverseJournalRequest reverses a posted journal
type ReverseJournalRequest struct {
	ReversalDate string `json:"reversalDate"`
	Reason       string `json:"reason"`
}

// LedgerEntry is one movement of an account ledger
type LedgerEntry struct {
	Date          string          `json:"date"`
	JournalID     string          `json:"journalId"`
	JournalNumber string          `json:"journalNumber"`
	Description   string          `json:"description,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// TrialBalanceRow is the closing position of one account
type TrialBalanceRow struct {
	AccountID   string          `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountsClient is a client for the /accounts endpoints
type AccountsClient struct {
	client *httpclient.Client
}

// NewAccountsClient creates a new accounts client
func NewAccountsClient(c *httpclient.Client) *AccountsClient {
	return &AccountsClient{client: c}
}

// ListAccounts lists GL accounts
func (c *AccountsClient) ListAccounts(ctx context.Context, params ListParams) (*Page[Account], error) {
	var page Page[Account]
	if err := c.client.Get(ctx, "/accounts/accounts", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return &page, nil
}

// GetAccount retrieves a GL account
func (c *AccountsClient) GetAccount(ctx context.Context, id string) (*Account, error) {
	var out Account
	if err := c.client.Get(ctx, resource("/accounts/accounts", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &out, nil
}

// CreateAccount creates a GL account
func (c *AccountsClient) CreateAccount(ctx context.Context, in *AccountInput) (*Account, error) {
	var out Account
	if err := c.client.Post(ctx, "/accounts/accounts", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &out, nil
}

// UpdateAccount updates a GL account
func (c *AccountsClient) UpdateAccount(ctx context.Context, id string, in *AccountInput) (*Account, error) {
	var out Account
	if err := c.client.Put(ctx, resource("/accounts/accounts", id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &out, nil
}

// ListJournals lists journal entries
func (c *AccountsClient) ListJournals(ctx context.Context, params ListParams) (*Page[Journal], error) {
	var page Page[Journal]
	if err := c.client.Get(ctx, "/accounts/journals", params.Values(), &page); err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return &page, nil
}

// GetJournal retrieves a journal entry
func (c *AccountsClient) GetJournal(ctx context.Context, id string) (*Journal, error) {
	var out Journal
	if err := c.client.Get(ctx, resource("/accounts/journals", id), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	return &out, nil
}

// CreateJournal creates a draft journal entry
func (c *AccountsClient) CreateJournal(ctx context.Context, in *JournalInput) (*Journal, error) {
	var out Journal
	if err := c.client.Post(ctx, "/accounts/journals", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}
	return &out, nil
}

// PostJournal posts a journal entry to the ledger
func (c *AccountsClient) PostJournal(ctx context.Context, id string) (*Journal, error) {
	var out Journal
	if err := c.client.Post(ctx, resource("/accounts/journals", id, "post"), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to post journal entry: %w", err)
	}
	return &out, nil
}

// ReverseJournal creates the reversing entry of a posted journal
func (c *AccountsClient) ReverseJournal(ctx context.Context, id string, req *ReverseJournalRequest) (*Journal, error) {
	var out Journal
	if err := c.client.Post(ctx, resource("/accounts/journals", id, "reverse"), req, &out); err != nil {
		return nil, fmt.Errorf("failed to reverse journal entry: %w", err)
	}
	return &out, nil
}

// Ledger returns the movements of an account between two dates
func (c *AccountsClient) Ledger(ctx context.Context, accountID, from, to string) ([]LedgerEntry, error) {
	query := url.Values{}
	setIf(query, "from", from)
	setIf(query, "to", to)

	var out []LedgerEntry
	if err := c.client.Get(ctx, resource("/accounts/ledger", accountID), query, &out); err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return out, nil
}

// TrialBalance returns the trial balance as of a date
func (c *AccountsClient) TrialBalance(ctx context.Context, asOf, projectID string) ([]TrialBalanceRow, error) {
	query := url.Values{}
	setIf(query, "asOf", asOf)
	setIf(query, "projectId", projectID)

	var out []TrialBalanceRow
	if err := c.client.Get(ctx, "/accounts/trial-balance", query, &out); err != nil {
		return nil, fmt.Errorf("failed to get trial balance: %w", err)
	}
	return out, nil
}
