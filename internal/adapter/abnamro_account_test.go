package adapter_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dstapel/banksync/internal/adapter"
	"github.com/dstapel/banksync/internal/bank/abnamro"
	"github.com/dstapel/banksync/internal/domain"
)

func epochMillis(t *testing.T, date string) int64 {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return parsed.UnixMilli()
}

func TestTransactionFromMutation(t *testing.T) {
	mutation := abnamro.Mutation{
		Amount:             json.Number("-12.50"),
		CounterAccountName: "Albert  Heijn\n1442",
		DescriptionLines:   []string{"BEA, Betaalpas ", " Albert Heijn 1442,PAS123"},
		TransactionDate:    epochMillis(t, "2025-02-10"),
	}

	txn, err := adapter.TransactionFromMutation(mutation, "acct-1")
	if err != nil {
		t.Fatalf("TransactionFromMutation() error = %v", err)
	}

	if txn.AccountID != "acct-1" {
		t.Errorf("account id = %q, want acct-1", txn.AccountID)
	}
	if txn.Amount != -1250 {
		t.Errorf("amount = %d, want -1250 (minor units, x100)", txn.Amount)
	}
	if txn.PayeeName != "Albert Heijn 1442" {
		t.Errorf("payee = %q, whitespace should be collapsed", txn.PayeeName)
	}
	if txn.Memo != "BEA, Betaalpas Albert Heijn 1442,PAS123" {
		t.Errorf("memo = %q", txn.Memo)
	}
	if txn.Date != "2025-02-10" {
		t.Errorf("date = %q, want 2025-02-10", txn.Date)
	}
	if txn.IsReserved {
		t.Error("retail mutations are never reserved")
	}
}

func TestTransactionFromMutationMalformed(t *testing.T) {
	tests := []struct {
		name     string
		mutation abnamro.Mutation
	}{
		{
			name: "missing date",
			mutation: abnamro.Mutation{
				Amount: json.Number("-1.00"),
			},
		},
		{
			name: "missing amount",
			mutation: abnamro.Mutation{
				TransactionDate: 1739145600000,
			},
		},
		{
			name: "unparsable amount",
			mutation: abnamro.Mutation{
				Amount:          json.Number("n/a"),
				TransactionDate: 1739145600000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.TransactionFromMutation(tt.mutation, "acct-1")
			if !errors.Is(err, domain.ErrMalformedRecord) {
				t.Errorf("error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestTransactionFromMutationMemoTruncated(t *testing.T) {
	line := make([]byte, 300)
	for i := range line {
		line[i] = 'x'
	}
	mutation := abnamro.Mutation{
		Amount:           json.Number("1.00"),
		DescriptionLines: []string{string(line)},
		TransactionDate:  epochMillis(t, "2025-02-10"),
	}

	txn, err := adapter.TransactionFromMutation(mutation, "acct-1")
	if err != nil {
		t.Fatalf("TransactionFromMutation() error = %v", err)
	}
	if got := len([]rune(txn.Memo)); got != 200 {
		t.Errorf("memo length = %d, want 200", got)
	}
}
