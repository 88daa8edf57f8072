package abnamro_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dstapel/banksync/internal/bank/abnamro"
)

func TestAccountAllMutationsDrainsPages(t *testing.T) {
	const iban = "NL91ABNA0417164300"

	pages := map[string]string{
		"": `{"mutationsList": {
			"lastMutationKey": "key-2",
			"mutations": [
				{"mutation": {"amount": "-12.50", "counterAccountName": "Shop A", "transactionDate": 1740787200000}},
				{"mutation": {"amount": "-3.20", "counterAccountName": "Shop B", "transactionDate": 1740873600000}}
			]}}`,
		"key-2": `{"mutationsList": {
			"lastMutationKey": "",
			"mutations": [
				{"mutation": {"amount": "250.00", "counterAccountName": "Employer", "transactionDate": 1740960000000}}
			]}}`,
	}

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got, want := r.URL.Path, "/mutations/"+iban; got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
		if got := r.Header.Get("x-aab-serviceversion"); got != "v3" {
			t.Errorf("service version header = %q, want v3", got)
		}
		body, ok := pages[r.URL.Query().Get("lastMutationKey")]
		if !ok {
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("lastMutationKey"))
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	account := abnamro.NewAccount(server.Client(), server.URL, iban)

	mutations, err := account.AllMutations(context.Background())
	if err != nil {
		t.Fatalf("AllMutations() error = %v", err)
	}
	if len(mutations) != 3 {
		t.Fatalf("got %d mutations, want 3", len(mutations))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
	if mutations[2].CounterAccountName != "Employer" {
		t.Errorf("last mutation payee = %q, want Employer", mutations[2].CounterAccountName)
	}
	if mutations[0].Amount != json.Number("-12.50") {
		t.Errorf("first mutation amount = %q, want -12.50", mutations[0].Amount)
	}
}

func TestAccountLatestMutationsSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("lastMutationKey") {
			t.Error("latest fetch must not send a cursor")
		}
		fmt.Fprint(w, `{"mutationsList": {
			"lastMutationKey": "ignored",
			"mutations": [{"mutation": {"amount": "-1.00", "transactionDate": 1740787200000}}]
		}}`)
	}))
	defer server.Close()

	account := abnamro.NewAccount(server.Client(), server.URL, "NL91ABNA0417164300")

	mutations, err := account.LatestMutations(context.Background())
	if err != nil {
		t.Fatalf("LatestMutations() error = %v", err)
	}
	if len(mutations) != 1 {
		t.Fatalf("got %d mutations, want 1", len(mutations))
	}
}

func TestAccountFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	account := abnamro.NewAccount(server.Client(), server.URL, "NL91ABNA0417164300")

	if _, err := account.LatestMutations(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
