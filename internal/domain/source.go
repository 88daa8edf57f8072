package domain

import "context"

// SourceAccount is implemented by every bank adapter variant. It binds a
// bank-specific source account to a destination ledger account and yields
// canonical transactions already stamped with the destination account id.
type SourceAccount interface {
	// SourceID identifies the underlying bank account (IBAN, card number,
	// statement path). Two adapters with the same SourceID wrap the same
	// source account.
	SourceID() string

	// BudgetID and AccountID return the destination binding captured at
	// construction time.
	BudgetID() string
	AccountID() string

	// Transactions returns the account's full transaction history, draining
	// any source-side pagination before returning.
	Transactions(ctx context.Context) ([]Transaction, error)

	// LatestTransactions returns the source's recent window.
	LatestTransactions(ctx context.Context) ([]Transaction, error)
}
