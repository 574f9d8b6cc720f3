package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

// Markdown builds a plain markdown report of the dashboard view
func Markdown(view dashboard.View) string {
	var b strings.Builder

	b.WriteString("# Portfolio\n\n")
	b.WriteString(fmt.Sprintf("_%s_\n\n", LastUpdated(view.LastUpdated)))

	verdict := "Positive"
	if !view.Totals.IsGain() {
		verdict = "Negative"
	}
	b.WriteString("| Total value | Total cost | P&L |\n|---:|---:|---:|\n")
	b.WriteString(fmt.Sprintf("| %s | %s | %s %s (%s) |\n\n",
		Currency(view.Totals.Value, 0), Currency(view.Totals.Cost, 0),
		Currency(view.Totals.PnL, 0), verdict, Percent(view.Totals.PnLPct)))

	b.WriteString("## Positions\n\n")
	if len(view.Positions) == 0 {
		b.WriteString(EmptyPositionsMessage + "\n\n")
	} else {
		b.WriteString("| Asset | Amount | Unit cost | Price | Value | P&L |\n|---|---:|---:|---:|---:|---:|\n")
		for _, pos := range view.Positions {
			b.WriteString(fmt.Sprintf("| **%s** %s | %s | %s | %s | %s | %s (%s) |\n",
				pos.Symbol, pos.Name, pos.Amount.String(), Price(pos.UnitCost), Price(pos.Price),
				Currency(pos.Value, 0), Currency(pos.PnL, 0), Percent(pos.PnLPct)))
		}
		b.WriteString("\n")
	}
	if len(view.Pending) > 0 {
		b.WriteString(fmt.Sprintf("Waiting for quotes: %s\n\n", strings.Join(view.Pending, ", ")))
	}

	b.WriteString("## Timeline\n\n")
	if view.Timeline.Empty {
		b.WriteString(view.Timeline.Placeholder + "\n\n")
	} else {
		b.WriteString(fmt.Sprintf("`%s` %s → %s, %s (%s) %s\n\n",
			Sparkline(view.Timeline.Points),
			Currency(view.Timeline.Base, 0), Currency(view.Timeline.Current, 0),
			Currency(view.Timeline.Delta, 0), Percent(view.Timeline.DeltaPct),
			view.Timeline.Timeframe.Description()))
	}

	b.WriteString("## Allocation\n\n")
	if len(view.Allocation) == 0 {
		b.WriteString(view.AllocationPlaceholder + "\n\n")
	} else {
		b.WriteString("| Asset | Share | Value |\n|---|---:|---:|\n")
		for _, slice := range view.Allocation {
			b.WriteString(fmt.Sprintf("| %s | %s%% | %s |\n", slice.Symbol, slice.SharePct.StringFixed(2), Currency(slice.Value, 0)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Trending\n\n")
	if len(view.Trending) == 0 {
		b.WriteString(view.TrendingPlaceholder + "\n")
	} else {
		b.WriteString("| Asset | Price | 24h | 7d | Market cap |\n|---|---:|---:|---:|---:|\n")
		for _, row := range view.Trending {
			b.WriteString(fmt.Sprintf("| **%s** %s | %s | %s | %s | %s |\n",
				row.Symbol, row.Name, Price(row.Price), Percent(row.Change24h), Percent(row.Change7d), Compact(row.MarketCap)))
		}
	}

	return b.String()
}

// RenderMarkdown styles markdown for the terminal; an empty style picks one from the terminal
func RenderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
