package report

import (
	"encoding/json"

	"github.com/dstapel/banksync/internal/domain"
)

// OutputFormatter defines the interface for rendering cycle results
type OutputFormatter interface {
	Format(result domain.SyncResult) ([]byte, error)
	FileExtension() string
}

// JSONFormatter renders cycle results as JSON
type JSONFormatter struct {
	PrettyPrint bool
}

func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{
		PrettyPrint: prettyPrint,
	}
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(result domain.SyncResult) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

func (f *JSONFormatter) FileExtension() string {
	return "json"
}
