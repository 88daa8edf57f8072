// Package ledger implements the HTTP client for the destination budgeting
// API.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dstapel/banksync/internal/domain"
)

// Client talks to the budgeting ledger API with a bearer token. Budgets are
// fetched once and cached; Reset drops the cache when the caller decides the
// data is stale.
type Client struct {
	httpc   *http.Client
	baseURL string
	token   string
	log     zerolog.Logger

	mu      sync.Mutex
	budgets []domain.Budget
}

// New creates a ledger client for the API at baseURL.
func New(baseURL, token string, log zerolog.Logger) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		token:   token,
		log:     log,
	}
}

type budgetsResponse struct {
	Data struct {
		Budgets []domain.Budget `json:"budgets"`
	} `json:"data"`
}

// Budgets returns the budgets visible to the token, accounts included. The
// first call hits the API; later calls return the cached copy until Reset.
func (c *Client) Budgets(ctx context.Context) ([]domain.Budget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.budgets == nil {
		budgets, err := c.fetchBudgets(ctx)
		if err != nil {
			return nil, err
		}
		c.budgets = budgets
	}

	// Hand out a copy so callers cannot mutate the cache.
	budgets := make([]domain.Budget, len(c.budgets))
	copy(budgets, c.budgets)
	return budgets, nil
}

// Accounts returns the accounts of one budget, from the cached budget list.
func (c *Client) Accounts(ctx context.Context, budgetID string) ([]domain.Account, error) {
	budgets, err := c.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	for _, budget := range budgets {
		if budget.ID == budgetID {
			return budget.Accounts, nil
		}
	}
	return nil, fmt.Errorf("budget %s not found on the ledger", budgetID)
}

// Reset drops the cached budget list; the next Budgets call refetches.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.budgets = nil
}

func (c *Client) fetchBudgets(ctx context.Context) ([]domain.Budget, error) {
	endpoint := c.baseURL + "/budgets?include_accounts=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building budgets request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching budgets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching budgets: unexpected status %s", resp.Status)
	}

	var decoded budgetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding budgets response: %w", err)
	}

	budgets := decoded.Data.Budgets
	for i := range budgets {
		for j := range budgets[i].Accounts {
			budgets[i].Accounts[j].BudgetID = budgets[i].ID
		}
	}
	c.log.Debug().Int("budgets", len(budgets)).Msg("fetched ledger budgets")
	return budgets, nil
}

type uploadRequest struct {
	Transactions []domain.Payload `json:"transactions"`
}

// UploadTransactions bulk-creates transactions in one budget.
func (c *Client) UploadTransactions(ctx context.Context, budgetID string, payloads []domain.Payload) error {
	if len(payloads) == 0 {
		return nil
	}

	body, err := json.Marshal(uploadRequest{Transactions: payloads})
	if err != nil {
		return fmt.Errorf("encoding upload request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, url.PathEscape(budgetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("uploading transactions to budget %s: %w", budgetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("uploading transactions to budget %s: status %s: %s", budgetID, resp.Status, detail)
	}

	c.log.Debug().
		Str("budget_id", budgetID).
		Int("transactions", len(payloads)).
		Msg("uploaded transaction batch")
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
