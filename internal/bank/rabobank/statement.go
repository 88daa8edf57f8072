// Package rabobank reads transactions from Rabobank CSV statement exports,
// the one static-file source. There is no session here: the caller downloads
// the export and points the statement at the file.
package rabobank

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dstapel/banksync/pkg/fileutil"
)

// Column names as they appear in the export header.
var statementColumns = []string{"IBAN/BBAN", "Munt", "Datum", "Bedrag", "Naam tegenpartij", "Omschrijving-1"}

// Row is one raw statement line.
type Row struct {
	IBAN        string
	Currency    string
	Date        string // YYYY-MM-DD as exported
	Amount      decimal.Decimal
	PayeeName   string
	Description string
}

// Statement is a CSV statement export for one account.
type Statement struct {
	path string
}

// NewStatement returns a statement backed by the CSV file at path.
func NewStatement(path string) *Statement {
	return &Statement{path: path}
}

// Path returns the statement file location, which doubles as the source
// account identity for this source.
func (s *Statement) Path() string {
	return s.path
}

// Rows reads every statement line. Rows with an unparsable amount are
// dropped rather than failing the whole file; missing identity fields are
// the adapter's concern.
func (s *Statement) Rows() ([]Row, error) {
	reader := fileutil.NewCSVReader(s.path)

	header, err := reader.Header()
	if err != nil {
		return nil, fmt.Errorf("reading statement header: %w", err)
	}
	columns, err := headerIndex(header, statementColumns)
	if err != nil {
		return nil, fmt.Errorf("mapping statement columns: %w", err)
	}

	var rows []Row
	err = reader.ForEachRow(func(row []string) error {
		field := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		amount, err := parseAmount(field("Bedrag"))
		if err != nil {
			return nil
		}

		rows = append(rows, Row{
			IBAN:        field("IBAN/BBAN"),
			Currency:    field("Munt"),
			Date:        field("Datum"),
			Amount:      amount,
			PayeeName:   field("Naam tegenpartij"),
			Description: field("Omschrijving-1"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading statement rows: %w", err)
	}
	return rows, nil
}

// headerIndex maps the expected column names onto their positions in the
// header, case-insensitively.
func headerIndex(header []string, expected []string) (map[string]int, error) {
	columns := make(map[string]int, len(expected))
	for _, name := range expected {
		found := false
		for i, field := range header {
			if strings.EqualFold(strings.TrimSpace(field), name) {
				columns[name] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("required column %q not found in statement header", name)
		}
	}
	return columns, nil
}

// parseAmount handles the export's Dutch number format: "+1.234,56" uses a
// comma decimal separator and optional dot thousands separators.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
