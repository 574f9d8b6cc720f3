package timeline

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// PointCount is the number of interpolation points in a timeline
const PointCount = 8

// Placeholder is shown instead of the chart when there is nothing to project
const Placeholder = "Add assets to view the timeline."

// bulgeFactor scales the sinusoidal bend added to the straight line between base and current
const bulgeFactor = 0.08

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	floor   = decimal.NewFromInt(-100)
)

// Timeline is an illustrative value trajectory synthesized from one percent change per asset
// It is not price history: only Base and Current are derived from market data
type Timeline struct {
	Timeframe   domain.Timeframe `json:"timeframe"`
	Empty       bool             `json:"empty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Base        decimal.Decimal  `json:"base"`
	Current     decimal.Decimal  `json:"current"`
	Delta       decimal.Decimal  `json:"delta"`
	DeltaPct    decimal.Decimal  `json:"delta_pct"`
	Points      []float64        `json:"points"`
}

// PreviousPrice inverts a percent change to recover the price at the start of the timeframe
// Returns price unchanged when the change is unknown or at or below -100%
func PreviousPrice(price decimal.Decimal, changePct decimal.NullDecimal) decimal.Decimal {
	if !changePct.Valid || !changePct.Decimal.GreaterThan(floor) {
		return price
	}
	return price.Div(one.Add(changePct.Decimal.Div(hundred)))
}

// BaseValue sums previous price x amount over all positions for the timeframe
func BaseValue(positions []domain.Position, quotes domain.QuoteCache, tf domain.Timeframe) decimal.Decimal {
	base := decimal.Zero
	for _, pos := range positions {
		change := decimal.NullDecimal{}
		if q, ok := quotes.Get(pos.Symbol); ok {
			change = q.PercentChange(tf)
		}
		base = base.Add(PreviousPrice(pos.Price, change).Mul(pos.Amount))
	}
	return base
}

// Build projects the portfolio value back over the timeframe
// Logic:
//  1. Zero positions: empty timeline with the placeholder message
//  2. Base = BaseValue, Current = Sum of position values
//  3. Delta = Current - Base, DeltaPct = Delta / Base x 100 (0 when Base is 0)
//  4. Points: linear interpolation from Base to Current plus a sine bulge
//
// The bulge only smooths the drawn line. It is not a forecast and carries no analytical meaning.
func Build(positions []domain.Position, quotes domain.QuoteCache, tf domain.Timeframe) Timeline {
	if len(positions) == 0 {
		return Timeline{
			Timeframe:   tf,
			Empty:       true,
			Placeholder: Placeholder,
			Base:        decimal.Zero,
			Current:     decimal.Zero,
			Delta:       decimal.Zero,
			DeltaPct:    decimal.Zero,
			Points:      []float64{},
		}
	}

	base := BaseValue(positions, quotes, tf)
	current := decimal.Zero
	for _, pos := range positions {
		current = current.Add(pos.Value)
	}

	delta := current.Sub(base)
	deltaPct := decimal.Zero
	if !base.IsZero() {
		deltaPct = delta.Div(base).Mul(hundred)
	}

	return Timeline{
		Timeframe: tf,
		Base:      base,
		Current:   current,
		Delta:     delta,
		DeltaPct:  deltaPct,
		Points:    interpolate(base.InexactFloat64(), current.InexactFloat64()),
	}
}

// interpolate returns PointCount values running from base to current
func interpolate(base, current float64) []float64 {
	points := make([]float64, PointCount)
	span := current - base
	for i := range points {
		progress := float64(i) / float64(PointCount-1)
		bulge := math.Sin(progress*math.Pi) * span * bulgeFactor
		points[i] = base + span*progress + bulge
	}
	return points
}
