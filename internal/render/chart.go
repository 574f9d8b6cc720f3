package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/allocator"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/metrics"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/timeline"
)

const (
	barRune       = "█"
	minChartWidth = 10
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// BarCells scales |pnl| against the largest |pnl| to a bar of at most half cells
// The scale never drops below 1 so tiny P&L values do not fill the chart
func BarCells(pnl, maxAbs decimal.Decimal, half int) int {
	if maxAbs.LessThan(one) {
		maxAbs = one
	}
	cells := int(pnl.Abs().Div(maxAbs).Mul(decimal.NewFromInt(int64(half))).Round(0).IntPart())
	if cells > half {
		return half
	}
	return cells
}

// PnLBars draws one diverging bar per position around a centre axis:
// losses grow to the left and gains to the right
func PnLBars(positions []domain.Position, width int) string {
	if len(positions) == 0 {
		return MutedStyle.Render(ChartPlaceholder)
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	half := width / 2

	maxAbs := one
	for _, pos := range positions {
		if pos.PnL.Abs().GreaterThan(maxAbs) {
			maxAbs = pos.PnL.Abs()
		}
	}

	lines := make([]string, 0, len(positions))
	for _, pos := range positions {
		cells := BarCells(pos.PnL, maxAbs, half)
		bar := SignStyle(pos.PnL.IsNegative()).Render(strings.Repeat(barRune, cells))

		left := strings.Repeat(" ", half)
		right := strings.Repeat(" ", half)
		if pos.PnL.IsNegative() {
			left = strings.Repeat(" ", half-cells) + bar
		} else {
			right = bar + strings.Repeat(" ", half-cells)
		}

		label := fmt.Sprintf("%s %s (%s)", pos.Symbol, Currency(pos.PnL, 0), Percent(pos.PnLPct))
		lines = append(lines, left+axisStyle.Render("│")+right+"  "+label)
	}
	return strings.Join(lines, "\n")
}

// Allocation draws a stacked bar of the slices followed by a colour legend
func Allocation(slices []allocator.Slice, placeholder string, width int) string {
	if len(slices) == 0 {
		if placeholder == "" {
			placeholder = allocator.Placeholder
		}
		return MutedStyle.Render(placeholder)
	}
	if width < minChartWidth {
		width = minChartWidth
	}

	var bar strings.Builder
	cumulative := 0.0
	drawn := 0
	for _, slice := range slices {
		cumulative += slice.Portion
		end := int(math.Round(cumulative / allocator.FullTurn * float64(width)))
		if end > width {
			end = width
		}
		if end > drawn {
			bar.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(slice.Color)).Render(strings.Repeat(barRune, end-drawn)))
			drawn = end
		}
	}

	lines := make([]string, 0, len(slices)+1)
	if drawn > 0 {
		lines = append(lines, bar.String())
	}
	for _, slice := range slices {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(slice.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %-6s %7s%%  %s", swatch, slice.Symbol, slice.SharePct.StringFixed(2), Currency(slice.Value, 0)))
	}
	return strings.Join(lines, "\n")
}

// Sparkline maps points onto block characters, lowest to highest
func Sparkline(points []float64) string {
	if len(points) == 0 {
		return ""
	}

	lo, hi := points[0], points[0]
	for _, p := range points {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if lo == hi {
		return strings.Repeat(string(sparkChars[3]), len(points))
	}

	var b strings.Builder
	for _, p := range points {
		index := int(math.Round((p - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}
		b.WriteRune(sparkChars[index])
	}
	return b.String()
}

// Timeline renders the back-projected trajectory with its delta line
func Timeline(tl timeline.Timeline) string {
	if tl.Empty {
		return MutedStyle.Render(tl.Placeholder)
	}

	style := SignStyle(tl.Delta.IsNegative())
	return strings.Join([]string{
		style.Render(Sparkline(tl.Points)),
		fmt.Sprintf("%s → %s", Currency(tl.Base, 0), Currency(tl.Current, 0)),
		style.Render(fmt.Sprintf("%s (%s)", Currency(tl.Delta, 0), Percent(tl.DeltaPct))) + " " + MutedStyle.Render(tl.Timeframe.Description()),
	}, "\n")
}

// Metrics renders the portfolio totals block
func Metrics(totals metrics.Totals) string {
	verdict := "Positive"
	if !totals.IsGain() {
		verdict = "Negative"
	}
	pnl := SignStyle(!totals.IsGain()).Render(fmt.Sprintf("%s %s (%s)", Currency(totals.PnL, 0), verdict, Percent(totals.PnLPct)))

	return strings.Join([]string{
		fmt.Sprintf("%s %s", MutedStyle.Render("Total value"), Currency(totals.Value, 0)),
		fmt.Sprintf("%s  %s", MutedStyle.Render("Total cost"), Currency(totals.Cost, 0)),
		fmt.Sprintf("%s         %s", MutedStyle.Render("P&L"), pnl),
	}, "\n")
}
