package allocator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

func position(symbol string, value int64) domain.Position {
	return domain.Position{Symbol: symbol, Value: decimal.NewFromInt(value)}
}

func TestCalculateAllocation_ThreeAssetScenario(t *testing.T) {
	// BTC 500, ETH 300, SOL 200 of a 1000 portfolio
	positions := []domain.Position{
		position("BTC", 500),
		position("ETH", 300),
		position("SOL", 200),
	}

	slices, err := CalculateAllocation(positions, decimal.NewFromInt(1000))

	require.NoError(t, err)
	require.Len(t, slices, 3)

	assert.Equal(t, "BTC", slices[0].Symbol)
	assert.InDelta(t, -math.Pi/2, slices[0].StartAngle, 1e-12, "first slice starts at the top")
	assert.InDelta(t, math.Pi, slices[0].Portion, 1e-12, "BTC covers half a turn")
	assert.True(t, slices[0].SharePct.Equal(decimal.NewFromInt(50)))

	assert.InDelta(t, slices[0].EndAngle(), slices[1].StartAngle, 1e-12, "slices are contiguous")
	assert.InDelta(t, slices[1].EndAngle(), slices[2].StartAngle, 1e-12, "slices are contiguous")
	assert.InDelta(t, -math.Pi/2+2*math.Pi, slices[2].EndAngle(), 1e-9, "last slice closes the circle")

	assert.Equal(t, "#7df3c0", slices[0].Color)
	assert.Equal(t, "#5c6bff", slices[1].Color)
	assert.Equal(t, "#ff6b81", slices[2].Color)
}

func TestCalculateAllocation_SumsToFullTurn(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
	}{
		{name: "Single position", values: []int64{42}},
		{name: "Uneven thirds", values: []int64{1, 1, 1}},
		{name: "Tiny next to large", values: []int64{1, 999999999}},
		{name: "More positions than colours", values: []int64{3, 7, 11, 13, 17, 19, 23, 29}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := make([]domain.Position, 0, len(tt.values))
			for i, v := range tt.values {
				positions = append(positions, position(string(rune('A'+i)), v))
			}

			slices, err := CalculateAllocation(positions, TotalValue(positions))
			require.NoError(t, err)

			sum := 0.0
			for _, s := range slices {
				sum += s.Portion
			}
			assert.InDelta(t, FullTurn, sum, 1e-9)
		})
	}
}

func TestCalculateAllocation_ColoursCycle(t *testing.T) {
	positions := make([]domain.Position, 0, 8)
	for i := 0; i < 8; i++ {
		positions = append(positions, position(string(rune('A'+i)), 10))
	}

	slices, err := CalculateAllocation(positions, decimal.NewFromInt(80))

	require.NoError(t, err)
	assert.Equal(t, Palette[0], slices[6].Color)
	assert.Equal(t, Palette[1], slices[7].Color)
}

func TestCalculateAllocation_ZeroTotal(t *testing.T) {
	positions := []domain.Position{position("DEAD", 0), position("GONE", 0)}

	slices, err := CalculateAllocation(positions, decimal.Zero)

	require.NoError(t, err)
	require.Len(t, slices, 2)
	for _, s := range slices {
		assert.Equal(t, 0.0, s.Portion)
		assert.True(t, s.SharePct.IsZero())
		assert.InDelta(t, StartAngle, s.StartAngle, 1e-12)
	}
}

func TestCalculateAllocation_Empty(t *testing.T) {
	slices, err := CalculateAllocation(nil, decimal.Zero)

	require.NoError(t, err)
	assert.Empty(t, slices)
}

func TestCalculateAllocation_MismatchedTotal(t *testing.T) {
	positions := []domain.Position{position("BTC", 100)}

	_, err := CalculateAllocation(positions, decimal.NewFromInt(400))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "full turn")
}

func TestTotalValue(t *testing.T) {
	positions := []domain.Position{position("BTC", 100), position("ETH", 50)}

	assert.True(t, TotalValue(positions).Equal(decimal.NewFromInt(150)))
	assert.True(t, TotalValue(nil).IsZero())
}
