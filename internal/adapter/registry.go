// Package adapter contains the source adapter layer: one variant per
// (bank, account-type) pair, each translating that source's transaction
// shape into the canonical model. Variants self-register at init time, so
// adding a bank means adding a file, not editing a dispatch table.
package adapter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dstapel/banksync/internal/domain"
)

// Bank and account-type names accepted in configuration.
const (
	BankAbnAmro  = "abnamro"
	BankRabobank = "rabobank"

	TypeAccount    = "account"
	TypeCreditCard = "credit_card"
	TypeStatement  = "statement"
)

// Binding captures the destination ledger coordinates an adapter is bound
// to. It is fixed at construction time and never re-looked-up.
type Binding struct {
	Budget  domain.Budget
	Account domain.Account
}

// Contract models a named, authenticated binding to one bank, from which
// source-account handles are retrieved. The handle's concrete type is
// bank-specific; the matching variant's NewSource knows how to unwrap it.
type Contract interface {
	Name() string
	Bank() string
	AccountType() string

	// Account returns the bank-specific account handle for id. An empty id
	// selects the contract's default account.
	Account(id string) (any, error)
}

// Variant couples the two constructors that make up one (bank, account-type)
// adapter: credentials to contract, and contract handle plus destination
// binding to source account.
type Variant struct {
	NewContract func(name string, credentials map[string]string) (Contract, error)
	NewSource   func(handle any, binding Binding) (domain.SourceAccount, error)
}

type variantKey struct {
	bank        string
	accountType string
}

var (
	variantsMu sync.RWMutex
	variants   = make(map[variantKey]Variant)
)

// Register makes a variant available under the given bank and account-type
// names. It panics when called twice for the same pair, since that is a
// wiring bug, not a runtime condition.
func Register(bank, accountType string, variant Variant) {
	key := variantKey{strings.ToLower(bank), strings.ToLower(accountType)}

	variantsMu.Lock()
	defer variantsMu.Unlock()
	if _, dup := variants[key]; dup {
		panic(fmt.Sprintf("adapter: Register called twice for %s/%s", bank, accountType))
	}
	variants[key] = variant
}

// Lookup resolves a variant by bank and account-type name,
// case-insensitively.
func Lookup(bank, accountType string) (Variant, bool) {
	variantsMu.RLock()
	defer variantsMu.RUnlock()
	variant, ok := variants[variantKey{strings.ToLower(bank), strings.ToLower(accountType)}]
	return variant, ok
}
