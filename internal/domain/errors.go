package domain

import (
	"errors"
	"fmt"
)

// ErrLotNotFound is returned when a lot identifier is not present in the ledger
var ErrLotNotFound = errors.New("lot not found")

// ErrKeyNotFound is returned by a KeyValueStore when the key has never been written
var ErrKeyNotFound = errors.New("key not found")

// ValidationError reports malformed add-asset input
// It is raised locally and never reaches the network
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FetchErrorKind classifies why a quote request failed
type FetchErrorKind string

const (
	FetchErrorTransport FetchErrorKind = "transport" // Request never produced a response
	FetchErrorStatus    FetchErrorKind = "status"    // Non-2xx HTTP response
	FetchErrorDecode    FetchErrorKind = "decode"    // Body was not well-formed JSON
	FetchErrorUpstream  FetchErrorKind = "upstream"  // Payload carried a nonzero error_code
)

// FetchError reports a failed quote retrieval with a human-readable message
type FetchError struct {
	Kind    FetchErrorKind
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same request could succeed
func (e *FetchError) Retryable() bool {
	return e.Kind == FetchErrorTransport || e.Kind == FetchErrorStatus
}

// UnresolvedSymbolError is returned when a requested symbol is absent from the quote response
type UnresolvedSymbolError struct {
	Symbol string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("symbol %s not found", e.Symbol)
}
