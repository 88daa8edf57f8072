package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/dstapel/banksync/internal/bank/rabobank"
	"github.com/dstapel/banksync/internal/domain"
	"github.com/dstapel/banksync/internal/logger"
)

func init() {
	Register(BankRabobank, TypeStatement, Variant{
		NewContract: newRabobankStatementContract,
		NewSource:   newRabobankStatementSource,
	})
}

type rabobankStatementContract struct {
	name string
	path string
}

func newRabobankStatementContract(name string, credentials map[string]string) (Contract, error) {
	path := credentials["path"]
	if path == "" {
		return nil, fmt.Errorf("contract %q: missing path credential", name)
	}
	return &rabobankStatementContract{name: name, path: path}, nil
}

func (c *rabobankStatementContract) Name() string        { return c.name }
func (c *rabobankStatementContract) Bank() string        { return BankRabobank }
func (c *rabobankStatementContract) AccountType() string { return TypeStatement }

func (c *rabobankStatementContract) Account(id string) (any, error) {
	path := c.path
	if id != "" {
		path = id
	}
	return rabobank.NewStatement(path), nil
}

type rabobankStatementSource struct {
	statement *rabobank.Statement
	binding   Binding
}

func newRabobankStatementSource(handle any, binding Binding) (domain.SourceAccount, error) {
	statement, ok := handle.(*rabobank.Statement)
	if !ok {
		return nil, fmt.Errorf("rabobank statement adapter: unexpected handle type %T", handle)
	}
	return &rabobankStatementSource{statement: statement, binding: binding}, nil
}

func (s *rabobankStatementSource) SourceID() string  { return s.statement.Path() }
func (s *rabobankStatementSource) BudgetID() string  { return s.binding.Budget.ID }
func (s *rabobankStatementSource) AccountID() string { return s.binding.Account.ID }

func (s *rabobankStatementSource) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)

	rows, err := s.statement.Rows()
	if err != nil {
		return nil, err
	}
	transactions := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txn, err := TransactionFromStatementRow(row, s.binding.Account.ID)
		if err != nil {
			log.Warn().Err(err).Str("statement", s.statement.Path()).Msg("skipping malformed statement row")
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}

// LatestTransactions is the whole file: a static export has no separate
// recent window.
func (s *rabobankStatementSource) LatestTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.Transactions(ctx)
}

// TransactionFromStatementRow normalizes one statement line. The export
// carries signed amounts already, so no side rules apply here.
func TransactionFromStatementRow(row rabobank.Row, accountID string) (domain.Transaction, error) {
	if row.Date == "" {
		return domain.Transaction{}, fmt.Errorf("%w: statement row has no date", domain.ErrMalformedRecord)
	}
	if _, err := time.Parse(dateLayout, row.Date); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: unparsable date %q", domain.ErrMalformedRecord, row.Date)
	}

	return domain.Transaction{
		AccountID: accountID,
		Amount:    toMinorUnits(row.Amount),
		PayeeName: cleanUp(row.PayeeName),
		Memo:      truncate(cleanUp(row.Description), memoLimit),
		Date:      row.Date,
	}, nil
}
