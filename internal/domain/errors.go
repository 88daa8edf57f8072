package domain

import "errors"

// Configuration errors surface at registration time and fail the single
// registration, never the process. Lookup misses (budget or account name not
// found) are not errors at all: those return (zero, false).
var (
	// ErrUnknownContract means a friendly contract name was not registered.
	ErrUnknownContract = errors.New("unknown contract")

	// ErrUnknownVariant means no adapter variant exists for a requested
	// (bank, account-type) pair.
	ErrUnknownVariant = errors.New("unknown bank/account-type variant")

	// ErrMalformedRecord means a source transaction is missing a required
	// field (date or amount). A canonical transaction without its identity
	// fields cannot be deduplicated, so adapters refuse to produce one.
	ErrMalformedRecord = errors.New("source record missing required field")
)
