package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lot represents one purchase record entered by the user
// Lots are owned by the asset ledger and persisted in insertion order
type Lot struct {
	ID     string          `json:"id"`     // Opaque identifier (uuid v4 for new lots, legacy ids are kept as-is)
	Symbol string          `json:"symbol"` // Always upper-cased
	Amount decimal.Decimal `json:"amount"` // Quantity held, strictly positive
	Cost   decimal.Decimal `json:"cost"`   // Per-unit cost basis, never negative
}

// NewLot builds a validated lot with a fresh identifier
func NewLot(symbol string, amount, cost decimal.Decimal) (*Lot, error) {
	lot := &Lot{
		ID:     uuid.NewString(),
		Symbol: NormalizeSymbol(symbol),
		Amount: amount,
		Cost:   cost,
	}

	if err := lot.Validate(); err != nil {
		return nil, err
	}

	return lot, nil
}

// Validate ensures the lot adheres to domain rules
// Returns a *ValidationError if validation fails
func (l *Lot) Validate() error {
	if l.Symbol == "" {
		return &ValidationError{Field: "symbol", Message: "symbol cannot be empty"}
	}

	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	if l.Cost.LessThan(decimal.Zero) {
		return &ValidationError{Field: "cost", Message: "cost cannot be negative"}
	}

	return nil
}

// CostBasis returns amount x unit cost for this lot
func (l *Lot) CostBasis() decimal.Decimal {
	return l.Amount.Mul(l.Cost)
}

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeSymbols upper-cases, drops blanks and deduplicates symbols, keeping first-seen order
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
