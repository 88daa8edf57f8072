package adapter

import (
	"net/http"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// The ledger API rejects memos above this length, so adapters truncate
// after assembling the full memo, never per field.
const memoLimit = 200

const dateLayout = "2006-01-02"

// Minor-unit scale for the ledger's integer amounts. The sources report
// two-decimal currency values, so every adapter scales by 100.
var minorUnitScale = decimal.NewFromInt(100)

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitScale).Round(0).IntPart()
}

// cleanUp collapses all runs of whitespace, newlines included, to single
// spaces.
func cleanUp(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// displayAmount renders an original-currency amount for memo lines, using
// the currency's own minor-unit fraction.
func displayAmount(amount decimal.Decimal, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = money.EUR
	}
	fraction := 2
	if currency := money.GetCurrency(currencyCode); currency != nil {
		fraction = currency.Fraction
	}
	minor := amount.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, currencyCode).Display()
}

type sessionTransport struct {
	cookie string
	base   http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Cookie", t.cookie)
	return t.base.RoundTrip(clone)
}

// newSessionClient builds the HTTP client handed to bank fetchers. The
// session cookie, when configured, comes out of whatever authentication
// flow runs outside this library.
func newSessionClient(cookie string) *http.Client {
	client := &http.Client{Timeout: 30 * time.Second}
	if cookie != "" {
		client.Transport = &sessionTransport{cookie: cookie, base: http.DefaultTransport}
	}
	return client
}
