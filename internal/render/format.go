package render

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Placeholders and labels shared by the terminal front ends
const (
	EmptyPositionsMessage = "No assets added yet."
	ChartPlaceholder      = "Add assets to your portfolio to see the chart."
	WaitingMessage        = "Waiting for live data..."
	unknownValue          = "--"
)

var one = decimal.NewFromInt(1)

// Currency formats a USD amount with a fixed number of fraction digits,
// e.g. "$1,235" for 0 digits or "$0.1234" for 4
func Currency(amount decimal.Decimal, digits int) string {
	cur := money.GetCurrency(money.USD)
	minor := amount.Shift(int32(digits)).Round(0)
	if !minor.BigInt().IsInt64() {
		return wideCurrency(amount, digits, cur)
	}
	formatter := money.NewFormatter(digits, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return formatter.Format(minor.IntPart())
}

// wideCurrency lays out amounts whose minor units overflow int64 the same way go-money does
func wideCurrency(amount decimal.Decimal, digits int, cur *money.Currency) string {
	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(int32(digits)), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(r)
	}
	if digits > 0 {
		b.WriteString(cur.Decimal)
		b.WriteString(frac)
	}

	out := strings.Replace(cur.Template, "1", b.String(), 1)
	out = strings.Replace(out, "$", cur.Grapheme, 1)
	if amount.IsNegative() {
		out = "-" + out
	}
	return out
}

// Price uses cents at or above one dollar and four digits below
func Price(amount decimal.Decimal) string {
	if amount.GreaterThanOrEqual(one) {
		return Currency(amount, 2)
	}
	return Currency(amount, 4)
}

// Percent renders a percentage with two decimals and an explicit plus sign for gains
func Percent(pct decimal.Decimal) string {
	fixed := pct.Round(2)
	if fixed.IsNegative() {
		return fixed.StringFixed(2) + "%"
	}
	return "+" + fixed.Abs().StringFixed(2) + "%"
}

var compactUnits = []struct {
	scale  decimal.Decimal
	suffix string
}{
	{decimal.New(1, 0), ""},
	{decimal.New(1, 3), "K"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 12), "T"},
}

// Compact renders large values in short notation (1.2T, 345B, 12M)
// Missing or zero values render as "--"
func Compact(value decimal.NullDecimal) string {
	if !value.Valid || value.Decimal.IsZero() {
		return unknownValue
	}

	sign := ""
	abs := value.Decimal
	if abs.IsNegative() {
		sign = "-"
		abs = abs.Abs()
	}

	unit := 0
	for i := len(compactUnits) - 1; i > 0; i-- {
		if abs.GreaterThanOrEqual(compactUnits[i].scale) {
			unit = i
			break
		}
	}

	scaled := compactDigits(abs.Div(compactUnits[unit].scale))
	// 999.6K rounds to 1000K; promote to the next unit
	if unit > 0 && unit < len(compactUnits)-1 && scaled.GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		unit++
		scaled = compactDigits(abs.Div(compactUnits[unit].scale))
	}

	return sign + scaled.String() + compactUnits[unit].suffix
}

// compactDigits keeps two significant digits below 100 and whole numbers above
func compactDigits(d decimal.Decimal) decimal.Decimal {
	switch {
	case d.LessThan(decimal.NewFromInt(10)):
		return d.Round(1)
	default:
		return d.Round(0)
	}
}

// LastUpdated is the sync line under the dashboard header
func LastUpdated(at *time.Time) string {
	if at == nil || at.IsZero() {
		return WaitingMessage
	}
	return "Last sync: " + at.Local().Format("15:04")
}
