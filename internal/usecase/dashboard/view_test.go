package dashboard

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/allocator"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/timeline"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuild_EmptyState(t *testing.T) {
	view := Build(State{})

	assert.Empty(t, view.Positions)
	assert.Empty(t, view.Pending)
	assert.True(t, view.Totals.Value.IsZero())
	assert.True(t, view.Timeline.Empty)
	assert.Equal(t, timeline.Placeholder, view.Timeline.Placeholder)
	assert.Empty(t, view.Allocation)
	assert.Equal(t, allocator.Placeholder, view.AllocationPlaceholder)
	assert.Equal(t, market.TrendingPlaceholder, view.TrendingPlaceholder)
	assert.Nil(t, view.LastUpdated)
	assert.Equal(t, domain.Timeframe24h, view.Timeframe, "defaults to 24h")
	assert.Equal(t, domain.InsightMarkets, view.Insight, "defaults to markets")
}

func TestBuild_FullPortfolio(t *testing.T) {
	updated := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	state := State{
		Lots: []domain.Lot{
			{ID: "1", Symbol: "BTC", Amount: dec("2"), Cost: dec("20000")},
			{ID: "2", Symbol: "PEPE", Amount: dec("1000"), Cost: dec("0.001")},
			{ID: "3", Symbol: "ETH", Amount: dec("10"), Cost: dec("1000")},
		},
		Quotes: domain.QuoteCache{
			"BTC": {Symbol: "BTC", Name: "Bitcoin", Price: dec("25000"), PercentChange7d: decimal.NewNullDecimal(dec("25"))},
			"ETH": {Symbol: "ETH", Name: "Ethereum", Price: dec("1000")},
		},
		LastUpdated: updated,
		Timeframe:   domain.Timeframe7d,
		Insight:     domain.InsightAllocation,
	}

	view := Build(state)

	require.Len(t, view.Positions, 2)
	assert.Equal(t, []string{"PEPE"}, view.Pending)

	// BTC 50000 + ETH 10000
	assert.True(t, view.Totals.Value.Equal(dec("60000")))
	assert.True(t, view.Totals.Cost.Equal(dec("50000")))
	assert.True(t, view.Totals.PnL.Equal(dec("10000")))

	// BTC base 25000/1.25*2 = 40000, ETH flat 10000
	assert.True(t, view.Timeline.Base.Equal(dec("50000")), "base %s", view.Timeline.Base)
	assert.Equal(t, domain.Timeframe7d, view.Timeline.Timeframe)

	require.Len(t, view.Allocation, 2)
	assert.Empty(t, view.AllocationPlaceholder)
	sum := 0.0
	for _, s := range view.Allocation {
		sum += s.Portion
	}
	assert.InDelta(t, 2*math.Pi, sum, 1e-9)

	require.Len(t, view.Trending, 2)
	assert.Equal(t, "BTC", view.Trending[0].Symbol)
	assert.Empty(t, view.TrendingPlaceholder)

	require.NotNil(t, view.LastUpdated)
	assert.Equal(t, updated, *view.LastUpdated)
	assert.Equal(t, domain.InsightAllocation, view.Insight)
}

func TestBuild_DoesNotMutateState(t *testing.T) {
	lots := []domain.Lot{{ID: "1", Symbol: "btc", Amount: dec("1"), Cost: dec("1")}}
	quotes := domain.QuoteCache{"BTC": {Symbol: "BTC", Price: dec("2")}}

	_ = Build(State{Lots: lots, Quotes: quotes})

	assert.Equal(t, "btc", lots[0].Symbol)
	assert.Len(t, quotes, 1)
}
