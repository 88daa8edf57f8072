package domain

import (
	"context"
	"strings"
)

// Budget is a named collection of ledger accounts on the destination system.
type Budget struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

// Account is a single account inside a ledger budget.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BudgetID string `json:"budget_id"`
}

// AccountByName looks an account up by name, case-insensitively. The first
// match wins. Absence is a routine outcome, reported via the bool.
func (b Budget) AccountByName(name string) (Account, bool) {
	for _, account := range b.Accounts {
		if strings.EqualFold(account.Name, name) {
			return account, true
		}
	}
	return Account{}, false
}

// BudgetByName looks a budget up by name, case-insensitively. The first
// match wins.
func BudgetByName(budgets []Budget, name string) (Budget, bool) {
	for _, budget := range budgets {
		if strings.EqualFold(budget.Name, name) {
			return budget, true
		}
	}
	return Budget{}, false
}

// LedgerClient is the destination budgeting API.
type LedgerClient interface {
	// Budgets returns the budgets visible to the client, each with its
	// accounts populated.
	Budgets(ctx context.Context) ([]Budget, error)

	// UploadTransactions pushes a batch of transactions into one budget.
	UploadTransactions(ctx context.Context, budgetID string, payloads []Payload) error
}
