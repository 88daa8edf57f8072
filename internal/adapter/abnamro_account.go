package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dstapel/banksync/internal/bank/abnamro"
	"github.com/dstapel/banksync/internal/domain"
	"github.com/dstapel/banksync/internal/logger"
)

func init() {
	Register(BankAbnAmro, TypeAccount, Variant{
		NewContract: newAbnAmroAccountContract,
		NewSource:   newAbnAmroAccountSource,
	})
}

type abnAmroAccountContract struct {
	name    string
	client  *http.Client
	baseURL string
	iban    string
}

func newAbnAmroAccountContract(name string, credentials map[string]string) (Contract, error) {
	iban := credentials["iban"]
	if iban == "" {
		return nil, fmt.Errorf("contract %q: missing iban credential", name)
	}
	return &abnAmroAccountContract{
		name:    name,
		client:  newSessionClient(credentials["session_cookie"]),
		baseURL: credentials["base_url"],
		iban:    iban,
	}, nil
}

func (c *abnAmroAccountContract) Name() string        { return c.name }
func (c *abnAmroAccountContract) Bank() string        { return BankAbnAmro }
func (c *abnAmroAccountContract) AccountType() string { return TypeAccount }

func (c *abnAmroAccountContract) Account(id string) (any, error) {
	iban := c.iban
	if id != "" {
		iban = id
	}
	return abnamro.NewAccount(c.client, c.baseURL, iban), nil
}

type abnAmroAccountSource struct {
	account *abnamro.Account
	binding Binding
}

func newAbnAmroAccountSource(handle any, binding Binding) (domain.SourceAccount, error) {
	account, ok := handle.(*abnamro.Account)
	if !ok {
		return nil, fmt.Errorf("abnamro account adapter: unexpected handle type %T", handle)
	}
	return &abnAmroAccountSource{account: account, binding: binding}, nil
}

func (s *abnAmroAccountSource) SourceID() string  { return s.account.IBAN() }
func (s *abnAmroAccountSource) BudgetID() string  { return s.binding.Budget.ID }
func (s *abnAmroAccountSource) AccountID() string { return s.binding.Account.ID }

func (s *abnAmroAccountSource) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	mutations, err := s.account.AllMutations(ctx)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, mutations), nil
}

func (s *abnAmroAccountSource) LatestTransactions(ctx context.Context) ([]domain.Transaction, error) {
	mutations, err := s.account.LatestMutations(ctx)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, mutations), nil
}

// convert drops malformed mutations instead of failing the fetch: a single
// broken source record must not abort the cycle.
func (s *abnAmroAccountSource) convert(ctx context.Context, mutations []abnamro.Mutation) []domain.Transaction {
	log := logger.FromContext(ctx)

	transactions := make([]domain.Transaction, 0, len(mutations))
	for _, mutation := range mutations {
		txn, err := TransactionFromMutation(mutation, s.binding.Account.ID)
		if err != nil {
			log.Warn().Err(err).Str("iban", s.account.IBAN()).Msg("skipping malformed mutation")
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions
}

// TransactionFromMutation normalizes one retail mutation into the canonical
// model. Missing optional fields become empty values; a missing date or
// amount is a MalformedRecord error.
func TransactionFromMutation(m abnamro.Mutation, accountID string) (domain.Transaction, error) {
	if m.TransactionDate == 0 {
		return domain.Transaction{}, fmt.Errorf("%w: mutation has no transaction date", domain.ErrMalformedRecord)
	}
	if m.Amount == "" {
		return domain.Transaction{}, fmt.Errorf("%w: mutation has no amount", domain.ErrMalformedRecord)
	}
	amount, err := decimal.NewFromString(m.Amount.String())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: unparsable amount %q", domain.ErrMalformedRecord, m.Amount)
	}

	return domain.Transaction{
		AccountID: accountID,
		Amount:    toMinorUnits(amount),
		PayeeName: cleanUp(m.CounterAccountName),
		Memo:      truncate(cleanUp(strings.Join(m.DescriptionLines, " ")), memoLimit),
		Date:      time.UnixMilli(m.TransactionDate).UTC().Format(dateLayout),
	}, nil
}
