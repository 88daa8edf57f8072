// Package service ties the core together: the account registry, the
// reconciliation engine and the per-budget upload batcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dstapel/banksync/internal/adapter"
	"github.com/dstapel/banksync/internal/dedup"
	"github.com/dstapel/banksync/internal/domain"
	"github.com/dstapel/banksync/internal/logger"
)

// Service runs reconciliation cycles: it pulls the latest transactions from
// every registered account, filters out what the ledger has already been
// sent, and batches the remainder per destination budget.
//
// A Service is built for sequential cycles; the dedup cache serializes its
// own operations, but callers should not run two cycles concurrently.
type Service struct {
	log    zerolog.Logger
	ledger domain.LedgerClient

	contracts       []adapter.Contract
	accounts        []domain.SourceAccount
	budgetByAccount map[string]string
	seen            *dedup.Cache
}

// New creates a Service uploading through ledgerClient. cacheSize bounds
// the seen-transaction cache; non-positive means the default.
func New(ledgerClient domain.LedgerClient, cacheSize int, log zerolog.Logger) *Service {
	return &Service{
		log:             log,
		ledger:          ledgerClient,
		budgetByAccount: make(map[string]string),
		seen:            dedup.New(cacheSize),
	}
}

// RegisterContract builds and stores the named bank contract. An unknown
// (bank, accountType) pair or bad credentials fail this registration only.
func (s *Service) RegisterContract(name, bank, accountType string, credentials map[string]string) error {
	variant, ok := adapter.Lookup(bank, accountType)
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrUnknownVariant, bank, accountType)
	}
	if _, exists := s.ContractByName(name); exists {
		s.log.Debug().Str("contract", name).Msg("contract already registered, skipping")
		return nil
	}

	contract, err := variant.NewContract(name, credentials)
	if err != nil {
		return fmt.Errorf("registering contract %q: %w", name, err)
	}
	s.contracts = append(s.contracts, contract)
	s.log.Info().Str("contract", name).Str("bank", bank).Str("account_type", accountType).Msg("registered contract")
	return nil
}

// ContractByName retrieves a contract by its friendly name,
// case-insensitively.
func (s *Service) ContractByName(name string) (adapter.Contract, bool) {
	for _, contract := range s.contracts {
		if strings.EqualFold(contract.Name(), name) {
			return contract, true
		}
	}
	return nil, false
}

// RegisterAccount binds a contract's source account to a destination budget
// account and activates the matching adapter. Registering the same source
// account against the same destination twice is silently ignored.
func (s *Service) RegisterAccount(ctx context.Context, contractName, budgetName, accountName, sourceAccountID string) error {
	contract, ok := s.ContractByName(contractName)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownContract, contractName)
	}

	budgets, err := s.ledger.Budgets(ctx)
	if err != nil {
		return fmt.Errorf("listing ledger budgets: %w", err)
	}
	budget, ok := domain.BudgetByName(budgets, budgetName)
	if !ok {
		return fmt.Errorf("budget %q not found on the ledger", budgetName)
	}
	account, ok := budget.AccountByName(accountName)
	if !ok {
		return fmt.Errorf("account %q not found in budget %q", accountName, budgetName)
	}

	variant, ok := adapter.Lookup(contract.Bank(), contract.AccountType())
	if !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrUnknownVariant, contract.Bank(), contract.AccountType())
	}
	handle, err := contract.Account(sourceAccountID)
	if err != nil {
		return fmt.Errorf("resolving source account on contract %q: %w", contractName, err)
	}
	source, err := variant.NewSource(handle, adapter.Binding{Budget: budget, Account: account})
	if err != nil {
		return fmt.Errorf("constructing adapter for contract %q: %w", contractName, err)
	}

	for _, existing := range s.accounts {
		if existing.SourceID() == source.SourceID() && existing.AccountID() == source.AccountID() {
			s.log.Debug().
				Str("source_id", source.SourceID()).
				Str("account_id", source.AccountID()).
				Msg("account already registered, skipping")
			return nil
		}
	}

	s.accounts = append(s.accounts, source)
	s.budgetByAccount[source.AccountID()] = source.BudgetID()
	s.log.Info().
		Str("contract", contractName).
		Str("budget", budget.Name).
		Str("account", account.Name).
		Msg("registered account")
	return nil
}

// Accounts returns the active accounts in registration order.
func (s *Service) Accounts() []domain.SourceAccount {
	accounts := make([]domain.SourceAccount, len(s.accounts))
	copy(accounts, s.accounts)
	return accounts
}

// GetLatestTransactions runs one fetch-and-filter pass and returns the
// upload delta: every transaction not seen before, not reserved and carrying
// a date, in account registration order then fetch order.
//
// On a cold start (empty cache) the fetch only primes the cache and the
// delta is empty.
func (s *Service) GetLatestTransactions(ctx context.Context) ([]domain.Transaction, error) {
	delta, _, err := s.runCycle(ctx)
	return delta, err
}

func (s *Service) runCycle(ctx context.Context) ([]domain.Transaction, domain.SyncResult, error) {
	started := time.Now()
	result := domain.SyncResult{
		CycleID:   uuid.NewString(),
		StartedAt: started,
		FirstRun:  s.seen.Len() == 0,
	}
	log := s.log.With().Str("cycle_id", result.CycleID).Logger()
	ctx = logger.WithContext(ctx, log)

	var delta []domain.Transaction
	for _, account := range s.accounts {
		fetched, err := account.LatestTransactions(ctx)
		if err != nil {
			return nil, result, fmt.Errorf("fetching latest transactions for source %q: %w", account.SourceID(), err)
		}

		accountSync := domain.AccountSync{AccountID: account.AccountID(), Fetched: len(fetched)}
		for _, txn := range fetched {
			if txn.Date == "" {
				log.Warn().Str("payee", txn.PayeeName).Msg("dropping transaction without a date")
				continue
			}
			if s.seen.Contains(txn) {
				continue
			}
			// Seen means seen, not uploaded: reserved transactions are
			// cached too so they stop reappearing every cycle.
			s.seen.Add(txn)
			if txn.IsReserved {
				log.Debug().Str("payee", txn.PayeeName).Str("date", txn.Date).Msg("skipping reserved transaction")
				continue
			}
			accountSync.New++
			delta = append(delta, txn)
		}
		result.Accounts = append(result.Accounts, accountSync)
	}

	result.CacheSize = s.seen.Len()
	result.DurationMS = time.Since(started).Milliseconds()

	if result.FirstRun {
		log.Info().Int("cached", result.CacheSize).Msg("first run detected, discarding transactions seen until now")
		return nil, result, nil
	}
	log.Info().Int("new", len(delta)).Int("cached", result.CacheSize).Msg("reconciliation cycle complete")
	return delta, result, nil
}

// UploadTransactions groups the given transactions by destination budget and
// uploads one batch per budget. Every batch is attempted even when an
// earlier one fails; the returned error aggregates all failures.
func (s *Service) UploadTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		s.log.Debug().Msg("no transactions to upload")
		return nil
	}
	_, err := s.uploadBatches(ctx, transactions)
	return err
}

func (s *Service) uploadBatches(ctx context.Context, transactions []domain.Transaction) ([]domain.BudgetUpload, error) {
	batches := make(map[string][]domain.Payload)
	for _, txn := range transactions {
		budgetID, ok := s.budgetByAccount[txn.AccountID]
		if !ok {
			s.log.Warn().Str("account_id", txn.AccountID).Msg("no registered budget for account, dropping transaction")
			continue
		}
		batches[budgetID] = append(batches[budgetID], txn.Payload())
	}

	budgetIDs := make([]string, 0, len(batches))
	for budgetID := range batches {
		budgetIDs = append(budgetIDs, budgetID)
	}
	sort.Strings(budgetIDs)

	var uploads []domain.BudgetUpload
	var errs []error
	for _, budgetID := range budgetIDs {
		payloads := batches[budgetID]
		upload := domain.BudgetUpload{BudgetID: budgetID, Transactions: len(payloads)}
		if err := s.ledger.UploadTransactions(ctx, budgetID, payloads); err != nil {
			upload.Error = err.Error()
			errs = append(errs, fmt.Errorf("uploading to budget %s: %w", budgetID, err))
		}
		uploads = append(uploads, upload)
	}
	return uploads, errors.Join(errs...)
}

// UploadLatestTransactions runs one full reconciliation cycle: fetch,
// filter, upload. The returned SyncResult describes the cycle regardless of
// the error.
func (s *Service) UploadLatestTransactions(ctx context.Context) (domain.SyncResult, error) {
	started := time.Now()
	delta, result, err := s.runCycle(ctx)
	if err != nil {
		return result, err
	}
	if len(delta) > 0 {
		result.Uploads, err = s.uploadBatches(ctx, delta)
	}
	result.DurationMS = time.Since(started).Milliseconds()
	return result, err
}
