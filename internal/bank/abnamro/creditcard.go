package abnamro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultICSBaseURL is the ICS credit-card portal origin.
const DefaultICSBaseURL = "https://www.icscards.nl"

// Credit-card transaction type codes as reported by the ICS API.
const (
	// TypePurchase marks a settled purchase.
	TypePurchase = "P"
	// TypeAuthorization marks a provisional hold that has not settled yet.
	TypeAuthorization = "A"
)

// CreditCardTransaction is one raw transaction row from the ICS API.
type CreditCardTransaction struct {
	TransactionDate             string      `json:"transactionDate"` // YYYY-MM-DD
	Description                 string      `json:"description"`
	BillingAmount               json.Number `json:"billingAmount"`
	BillingCurrency             string      `json:"billingCurrency"`
	SourceAmount                json.Number `json:"sourceAmount"`
	SourceCurrency              string      `json:"sourceCurrency"`
	TypeOfTransaction           string      `json:"typeOfTransaction"`
	EmbossingName               string      `json:"embossingName"`
	MerchantCategoryDescription string      `json:"merchantCategoryCodeDescription"`
	LastFourDigits              string      `json:"lastFourDigits"`
}

// Period is one statement period of a credit card.
type Period struct {
	Period        string `json:"period"` // e.g. "2025-02"
	StartDate     string `json:"startDatePeriod"`
	EndDate       string `json:"endDatePeriod"`
	CurrentPeriod bool   `json:"currentPeriod"`
}

// CreditCard fetches transactions for one ICS credit-card account over an
// authenticated session.
type CreditCard struct {
	httpc         *http.Client
	baseURL       string
	accountNumber string
}

// NewCreditCard creates a credit-card client. A nil httpc falls back to
// http.DefaultClient and an empty baseURL to DefaultICSBaseURL.
func NewCreditCard(httpc *http.Client, baseURL, accountNumber string) *CreditCard {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultICSBaseURL
	}
	return &CreditCard{httpc: httpc, baseURL: baseURL, accountNumber: accountNumber}
}

// Number returns the credit-card account number.
func (c *CreditCard) Number() string {
	return c.accountNumber
}

// Periods lists the card's statement periods.
func (c *CreditCard) Periods(ctx context.Context) ([]Period, error) {
	var periods []Period
	if err := c.getJSON(ctx, "/sec/nl/sec/periods", nil, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

// PeriodTransactions returns the transactions of a single statement period.
func (c *CreditCard) PeriodTransactions(ctx context.Context, period string) ([]CreditCardTransaction, error) {
	params := map[string]string{
		"flushCache":  "true",
		"fromPeriod":  period,
		"untilPeriod": period,
	}
	var transactions []CreditCardTransaction
	if err := c.getJSON(ctx, "/sec/nl/sec/transactions", params, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// CurrentPeriodTransactions returns the transactions of the card's current
// statement period.
func (c *CreditCard) CurrentPeriodTransactions(ctx context.Context) ([]CreditCardTransaction, error) {
	periods, err := c.Periods(ctx)
	if err != nil {
		return nil, err
	}
	for _, period := range periods {
		if period.CurrentPeriod {
			return c.PeriodTransactions(ctx, period.Period)
		}
	}
	return nil, fmt.Errorf("no current period reported for account %s", c.accountNumber)
}

// AllTransactions returns the transactions of every statement period, oldest
// period first.
func (c *CreditCard) AllTransactions(ctx context.Context) ([]CreditCardTransaction, error) {
	periods, err := c.Periods(ctx)
	if err != nil {
		return nil, err
	}
	var all []CreditCardTransaction
	for _, period := range periods {
		transactions, err := c.PeriodTransactions(ctx, period.Period)
		if err != nil {
			return nil, err
		}
		all = append(all, transactions...)
	}
	return all, nil
}

func (c *CreditCard) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building ics request: %w", err)
	}
	q := req.URL.Query()
	q.Set("accountNumber", c.accountNumber)
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
