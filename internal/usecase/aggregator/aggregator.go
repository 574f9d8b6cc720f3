package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Aggregate combines the ledger lots with the quote cache into one Position per symbol
// Logic:
//  1. Group lots by upper-cased symbol, in first-seen order
//  2. Sum amounts; cost basis is Sum(amount x cost), so the unit cost is amount-weighted
//  3. Drop symbols with no quote yet (price pending, not an error)
//  4. Derive value, P&L and P&L% from the quote price
//
// Pure function: neither input is modified
func Aggregate(lots []domain.Lot, quotes domain.QuoteCache) []domain.Position {
	order := make([]string, 0)
	groups := make(map[string]*domain.Position)

	for _, lot := range lots {
		symbol := domain.NormalizeSymbol(lot.Symbol)
		quote, ok := quotes.Get(symbol)
		if !ok {
			continue
		}

		pos, exists := groups[symbol]
		if !exists {
			pos = &domain.Position{
				Symbol:    symbol,
				Name:      quote.Name,
				Amount:    decimal.Zero,
				CostBasis: decimal.Zero,
				Price:     quote.Price,
			}
			groups[symbol] = pos
			order = append(order, symbol)
		}

		pos.Amount = pos.Amount.Add(lot.Amount)
		pos.CostBasis = pos.CostBasis.Add(lot.CostBasis())
		pos.LotIDs = append(pos.LotIDs, lot.ID)
	}

	positions := make([]domain.Position, 0, len(order))
	for _, symbol := range order {
		pos := groups[symbol]
		finalize(pos)
		positions = append(positions, *pos)
	}

	return positions
}

// finalize fills the fields derived from amount, cost basis and price
func finalize(pos *domain.Position) {
	pos.Value = pos.Price.Mul(pos.Amount)
	pos.PnL = pos.Value.Sub(pos.CostBasis)

	// Amount > 0 is enforced at entry, guard anyway for hand-edited ledgers
	if pos.Amount.IsZero() {
		pos.UnitCost = decimal.Zero
	} else {
		pos.UnitCost = pos.CostBasis.Div(pos.Amount)
	}

	if pos.CostBasis.IsZero() {
		pos.PnLPct = decimal.Zero
	} else {
		pos.PnLPct = pos.PnL.Div(pos.CostBasis).Mul(hundred)
	}
}
