package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dstapel/banksync/internal/bank/abnamro"
	"github.com/dstapel/banksync/internal/domain"
	"github.com/dstapel/banksync/internal/logger"
)

func init() {
	Register(BankAbnAmro, TypeCreditCard, Variant{
		NewContract: newAbnAmroCreditCardContract,
		NewSource:   newAbnAmroCreditCardSource,
	})
}

type abnAmroCreditCardContract struct {
	name          string
	client        *http.Client
	baseURL       string
	accountNumber string
}

func newAbnAmroCreditCardContract(name string, credentials map[string]string) (Contract, error) {
	accountNumber := credentials["account_number"]
	if accountNumber == "" {
		return nil, fmt.Errorf("contract %q: missing account_number credential", name)
	}
	return &abnAmroCreditCardContract{
		name:          name,
		client:        newSessionClient(credentials["session_cookie"]),
		baseURL:       credentials["base_url"],
		accountNumber: accountNumber,
	}, nil
}

func (c *abnAmroCreditCardContract) Name() string        { return c.name }
func (c *abnAmroCreditCardContract) Bank() string        { return BankAbnAmro }
func (c *abnAmroCreditCardContract) AccountType() string { return TypeCreditCard }

func (c *abnAmroCreditCardContract) Account(id string) (any, error) {
	accountNumber := c.accountNumber
	if id != "" {
		accountNumber = id
	}
	return abnamro.NewCreditCard(c.client, c.baseURL, accountNumber), nil
}

type abnAmroCreditCardSource struct {
	card    *abnamro.CreditCard
	binding Binding
}

func newAbnAmroCreditCardSource(handle any, binding Binding) (domain.SourceAccount, error) {
	card, ok := handle.(*abnamro.CreditCard)
	if !ok {
		return nil, fmt.Errorf("abnamro credit card adapter: unexpected handle type %T", handle)
	}
	return &abnAmroCreditCardSource{card: card, binding: binding}, nil
}

func (s *abnAmroCreditCardSource) SourceID() string  { return s.card.Number() }
func (s *abnAmroCreditCardSource) BudgetID() string  { return s.binding.Budget.ID }
func (s *abnAmroCreditCardSource) AccountID() string { return s.binding.Account.ID }

func (s *abnAmroCreditCardSource) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := s.card.AllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, raw), nil
}

// LatestTransactions returns the card's current statement period, the
// recent window this source exposes.
func (s *abnAmroCreditCardSource) LatestTransactions(ctx context.Context) ([]domain.Transaction, error) {
	raw, err := s.card.CurrentPeriodTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return s.convert(ctx, raw), nil
}

func (s *abnAmroCreditCardSource) convert(ctx context.Context, raw []abnamro.CreditCardTransaction) []domain.Transaction {
	log := logger.FromContext(ctx)

	transactions := make([]domain.Transaction, 0, len(raw))
	for _, ct := range raw {
		txn, err := TransactionFromCreditCard(ct, s.binding.Account.ID)
		if err != nil {
			log.Warn().Err(err).Str("account_number", s.card.Number()).Msg("skipping malformed credit card transaction")
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions
}

// TransactionFromCreditCard normalizes one ICS transaction. The source
// reports unsigned amounts with a type code: purchases become debits
// (negative), authorization holds stay positive and are flagged reserved so
// the engine keeps them out of upload deltas.
func TransactionFromCreditCard(ct abnamro.CreditCardTransaction, accountID string) (domain.Transaction, error) {
	if ct.TransactionDate == "" {
		return domain.Transaction{}, fmt.Errorf("%w: credit card transaction has no date", domain.ErrMalformedRecord)
	}
	if _, err := time.Parse(dateLayout, ct.TransactionDate); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: unparsable date %q", domain.ErrMalformedRecord, ct.TransactionDate)
	}
	if ct.BillingAmount == "" {
		return domain.Transaction{}, fmt.Errorf("%w: credit card transaction has no amount", domain.ErrMalformedRecord)
	}
	amount, err := decimal.NewFromString(ct.BillingAmount.String())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: unparsable amount %q", domain.ErrMalformedRecord, ct.BillingAmount)
	}

	magnitude := toMinorUnits(amount.Abs())
	signed := magnitude
	if ct.TypeOfTransaction == abnamro.TypePurchase {
		signed = -magnitude
	}

	memo := fmt.Sprintf("Description: %s\nBuyer: %s\nMerchant Category: %s\nAmount: %s",
		ct.Description,
		ct.EmbossingName,
		ct.MerchantCategoryDescription,
		displayAmount(amount, ct.BillingCurrency))

	return domain.Transaction{
		AccountID:  accountID,
		Amount:     signed,
		PayeeName:  cleanUp(ct.Description),
		Memo:       truncate(memo, memoLimit),
		Date:       ct.TransactionDate,
		IsReserved: ct.TypeOfTransaction == abnamro.TypeAuthorization,
	}, nil
}
