// Package abnamro wraps the ABN AMRO retail and ICS credit-card APIs behind
// small fetch clients. Authentication is not handled here: callers hand in
// an *http.Client that already carries a valid session (cookies obtained by
// whatever login flow they run), and these clients only do the plumbing of
// retrieving and decoding transaction data.
package abnamro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dstapel/banksync/internal/logger"
)

const (
	// DefaultBaseURL is the retail banking API origin.
	DefaultBaseURL = "https://www.abnamro.nl"

	serviceVersionHeader = "x-aab-serviceversion"
	serviceVersion       = "v3"
)

// Mutation is one raw transaction row from the retail mutations API.
type Mutation struct {
	Amount             json.Number `json:"amount"`
	CurrencyISOCode    string      `json:"currencyIsoCode"`
	CounterAccountName string      `json:"counterAccountName"`
	DescriptionLines   []string    `json:"descriptionLines"`
	TransactionDate    int64       `json:"transactionDate"` // epoch millis, 0 when absent
	BalanceAfter       json.Number `json:"balanceAfterMutation"`
}

type mutationsPage struct {
	MutationsList struct {
		LastMutationKey string `json:"lastMutationKey"`
		Mutations       []struct {
			Mutation Mutation `json:"mutation"`
		} `json:"mutations"`
	} `json:"mutationsList"`
}

// Account fetches mutations for a single IBAN over an authenticated session.
type Account struct {
	httpc   *http.Client
	baseURL string
	iban    string
}

// NewAccount creates an account client. A nil httpc falls back to
// http.DefaultClient and an empty baseURL to DefaultBaseURL.
func NewAccount(httpc *http.Client, baseURL, iban string) *Account {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Account{httpc: httpc, baseURL: baseURL, iban: iban}
}

// IBAN returns the account's IBAN.
func (a *Account) IBAN() string {
	return a.iban
}

// LatestMutations returns the most recent mutations window (first page only).
func (a *Account) LatestMutations(ctx context.Context) ([]Mutation, error) {
	mutations, _, err := a.fetchPage(ctx, "")
	return mutations, err
}

// AllMutations returns the full mutation history, re-querying with the
// lastMutationKey cursor until the source reports no further pages.
func (a *Account) AllMutations(ctx context.Context) ([]Mutation, error) {
	log := logger.FromContext(ctx)

	var all []Mutation
	cursor := ""
	for page := 1; ; page++ {
		mutations, next, err := a.fetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, mutations...)
		log.Debug().
			Str("iban", a.iban).
			Int("page", page).
			Int("mutations", len(mutations)).
			Msg("fetched mutations page")
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (a *Account) fetchPage(ctx context.Context, cursor string) ([]Mutation, string, error) {
	endpoint := fmt.Sprintf("%s/mutations/%s", a.baseURL, url.PathEscape(a.iban))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building mutations request: %w", err)
	}
	req.Header.Set(serviceVersionHeader, serviceVersion)
	if cursor != "" {
		q := req.URL.Query()
		q.Set("lastMutationKey", cursor)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching mutations for %s: %w", a.iban, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching mutations for %s: unexpected status %s", a.iban, resp.Status)
	}

	var page mutationsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decoding mutations response: %w", err)
	}

	mutations := make([]Mutation, 0, len(page.MutationsList.Mutations))
	for _, wrapped := range page.MutationsList.Mutations {
		mutations = append(mutations, wrapped.Mutation)
	}
	return mutations, page.MutationsList.LastMutationKey, nil
}
