package allocator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// Placeholder is shown instead of the chart when there is nothing to allocate
const Placeholder = "Add holdings to see allocation."

// StartAngle is the angle of the first slice: the top of the circle
const StartAngle = -math.Pi / 2

// FullTurn is the sum of all slice portions when the portfolio has value
const FullTurn = 2 * math.Pi

// tolerance for the full-turn safety check
const tolerance = 1e-9

// Palette holds the slice colours, assigned by index modulo its length
var Palette = []string{"#7df3c0", "#5c6bff", "#ff6b81", "#ffd166", "#60a5fa", "#f472b6"}

var hundred = decimal.NewFromInt(100)

// Slice is one position's share of the portfolio
type Slice struct {
	Symbol     string          `json:"symbol"`
	Value      decimal.Decimal `json:"value"`
	SharePct   decimal.Decimal `json:"share_pct"`
	StartAngle float64         `json:"start_angle"` // Radians, clockwise from the top
	Portion    float64         `json:"portion"`     // Radians covered by this slice
	Color      string          `json:"color"`
}

// EndAngle returns where the slice stops
func (s Slice) EndAngle() float64 {
	return s.StartAngle + s.Portion
}

// CalculateAllocation splits a full turn across positions by value
// Logic:
//  1. Keep input order; the first slice starts at StartAngle
//  2. Portion = Value / total x 2π (0 when total is not positive)
//  3. SharePct = Value / total x 100
//  4. Colour = Palette[i % len(Palette)]
//
// Safety: when total > 0 the portions must add up to a full turn
func CalculateAllocation(positions []domain.Position, total decimal.Decimal) ([]Slice, error) {
	slices := make([]Slice, 0, len(positions))
	if len(positions) == 0 {
		return slices, nil
	}

	hasValue := total.GreaterThan(decimal.Zero)
	totalF := total.InexactFloat64()

	angle := StartAngle
	sum := 0.0
	for i, pos := range positions {
		portion := 0.0
		share := decimal.Zero
		if hasValue {
			portion = pos.Value.InexactFloat64() / totalF * FullTurn
			share = pos.Value.Div(total).Mul(hundred)
		}

		slices = append(slices, Slice{
			Symbol:     pos.Symbol,
			Value:      pos.Value,
			SharePct:   share,
			StartAngle: angle,
			Portion:    portion,
			Color:      Palette[i%len(Palette)],
		})

		angle += portion
		sum += portion
	}

	// Safety check: a total that does not match the positions would leave a gap or an overlap
	if hasValue && math.Abs(sum-FullTurn) > tolerance {
		return nil, errors.New("allocation does not add up to a full turn")
	}

	return slices, nil
}

// TotalValue sums the values of positions
func TotalValue(positions []domain.Position) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.Value)
	}
	return total
}
