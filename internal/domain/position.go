package domain

import "github.com/shopspring/decimal"

// Position is the derived per-symbol aggregate of all lots combined with the latest price
// Positions are recomputed on every render and never persisted
type Position struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`     // Sum of lot amounts
	CostBasis decimal.Decimal `json:"cost_basis"` // Sum of amount x unit cost
	UnitCost  decimal.Decimal `json:"unit_cost"`  // CostBasis / Amount (amount-weighted)
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`   // Price x Amount
	PnL       decimal.Decimal `json:"pnl"`     // Value - CostBasis
	PnLPct    decimal.Decimal `json:"pnl_pct"` // 0 when CostBasis is 0
	LotIDs    []string        `json:"lot_ids"`
}
