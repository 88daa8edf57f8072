package domain

// Transaction is the canonical shape every source adapter normalizes into.
// Amount is the ledger's minor-unit integer (negative = money out), Date is
// YYYY-MM-DD and Memo is capped at 200 characters by the producing adapter.
type Transaction struct {
	AccountID  string
	Amount     int64
	PayeeName  string
	Memo       string
	Date       string
	IsReserved bool
}

// Key is the identity tuple used for deduplication. PayeeName and IsReserved
// are deliberately excluded: two transactions differing only in payee or
// reservation state are the same transaction for dedup purposes.
type Key struct {
	AccountID string
	Amount    int64
	Memo      string
	Date      string
}

// Key returns the transaction's dedup identity.
func (t Transaction) Key() Key {
	return Key{
		AccountID: t.AccountID,
		Amount:    t.Amount,
		Memo:      t.Memo,
		Date:      t.Date,
	}
}

// Equal reports whether two transactions share the same dedup identity.
func (t Transaction) Equal(other Transaction) bool {
	return t.Key() == other.Key()
}

// Payload is the wire shape the ledger's bulk-upload endpoint accepts.
type Payload struct {
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
	PayeeName string `json:"payee_name"`
	Memo      string `json:"memo"`
	Date      string `json:"date"`
}

// Payload converts the transaction into its upload wire shape.
func (t Transaction) Payload() Payload {
	return Payload{
		AccountID: t.AccountID,
		Amount:    t.Amount,
		PayeeName: t.PayeeName,
		Memo:      t.Memo,
		Date:      t.Date,
	}
}
