package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// PositionRow is the text of one positions table row
func PositionRow(pos domain.Position) []string {
	return []string{
		pos.Symbol + " " + MutedStyle.Render(pos.Name),
		pos.Amount.String(),
		Price(pos.UnitCost),
		Price(pos.Price),
		Currency(pos.Value, 0),
		SignStyle(pos.PnL.IsNegative()).Render(Currency(pos.PnL, 0) + " (" + Percent(pos.PnLPct) + ")"),
	}
}

// PositionsTable renders holdings in aggregation order
func PositionsTable(positions []domain.Position) string {
	if len(positions) == 0 {
		return MutedStyle.Render(EmptyPositionsMessage)
	}

	t := newTable("Asset", "Amount", "Unit cost", "Price", "Value", "P&L")
	for _, pos := range positions {
		t.Row(PositionRow(pos)...)
	}
	return t.String()
}

// TrendingTable renders the watchlist rows or the placeholder when none are cached
func TrendingTable(rows []market.TrendingRow, placeholder string) string {
	if len(rows) == 0 {
		return MutedStyle.Render(placeholder)
	}

	t := newTable("Asset", "Price", "24h", "7d", "Market cap")
	for _, row := range rows {
		t.Row(
			row.Symbol+" "+MutedStyle.Render(row.Name),
			Price(row.Price),
			changeCell(row.Change24h),
			changeCell(row.Change7d),
			Compact(row.MarketCap),
		)
	}
	return t.String()
}

func changeCell(pct decimal.Decimal) string {
	return SignStyle(pct.IsNegative()).Render(Percent(pct))
}
