package domain

import "context"

// KeyValueStore defines the persistence port used by the asset ledger
// Backends: file (local data dir), memory, postgres
type KeyValueStore interface {
	// Get returns the raw value stored under key
	// Returns ErrKeyNotFound if the key was never written
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// QuoteSource defines the port to the external quote API
type QuoteSource interface {
	// FetchQuotes issues one batched request for the given symbols
	// Symbols absent from the response are absent from the result (not an error)
	FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}
