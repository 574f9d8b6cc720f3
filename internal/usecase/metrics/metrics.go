package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// Totals represents the portfolio-wide summary of all positions
type Totals struct {
	Value  decimal.Decimal `json:"value"`
	Cost   decimal.Decimal `json:"cost"`
	PnL    decimal.Decimal `json:"pnl"`
	PnLPct decimal.Decimal `json:"pnl_pct"`
}

// Summarize sums position values and cost bases into portfolio totals
// Logic:
//   - Value: Sum of position values
//   - Cost: Sum of position cost bases
//   - PnL: Value - Cost
//   - PnLPct: PnL / Cost x 100, or 0 when Cost is 0
func Summarize(positions []domain.Position) Totals {
	value := decimal.Zero
	cost := decimal.Zero
	for _, pos := range positions {
		value = value.Add(pos.Value)
		cost = cost.Add(pos.CostBasis)
	}

	pnl := value.Sub(cost)
	pnlPct := decimal.Zero
	if !cost.IsZero() {
		pnlPct = pnl.Div(cost).Mul(decimal.NewFromInt(100))
	}

	return Totals{
		Value:  value,
		Cost:   cost,
		PnL:    pnl,
		PnLPct: pnlPct,
	}
}

// IsGain reports whether the portfolio is flat or in profit
func (t Totals) IsGain() bool {
	return !t.PnL.IsNegative()
}
