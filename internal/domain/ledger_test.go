package domain_test

import (
	"testing"

	"github.com/dstapel/banksync/internal/domain"
)

func TestBudgetAccountByName(t *testing.T) {
	budget := domain.Budget{
		ID:   "b-1",
		Name: "Household",
		Accounts: []domain.Account{
			{ID: "a-1", Name: "Checking", BudgetID: "b-1"},
			{ID: "a-2", Name: "Savings", BudgetID: "b-1"},
			{ID: "a-3", Name: "savings", BudgetID: "b-1"},
		},
	}

	account, ok := budget.AccountByName("checking")
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	if account.ID != "a-1" {
		t.Errorf("AccountByName() = %q, want a-1", account.ID)
	}

	// First match wins when names collide case-insensitively.
	account, ok = budget.AccountByName("SAVINGS")
	if !ok || account.ID != "a-2" {
		t.Errorf("AccountByName() = %q, %v, want a-2, true", account.ID, ok)
	}

	if _, ok := budget.AccountByName("missing"); ok {
		t.Error("expected no match for unknown account name")
	}
}

func TestBudgetByName(t *testing.T) {
	budgets := []domain.Budget{
		{ID: "b-1", Name: "Household"},
		{ID: "b-2", Name: "Business"},
	}

	budget, ok := domain.BudgetByName(budgets, "HOUSEHOLD")
	if !ok || budget.ID != "b-1" {
		t.Errorf("BudgetByName() = %q, %v, want b-1, true", budget.ID, ok)
	}

	if _, ok := domain.BudgetByName(budgets, "personal"); ok {
		t.Error("expected no match for unknown budget name")
	}
}
