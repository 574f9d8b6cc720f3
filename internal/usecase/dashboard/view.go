package dashboard

import (
	"time"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/aggregator"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/allocator"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/metrics"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/timeline"
)

// State is everything the dashboard is derived from
// It is a plain value: front ends take a snapshot and pass it to Build
type State struct {
	Lots        []domain.Lot
	Quotes      domain.QuoteCache
	LastUpdated time.Time
	Timeframe   domain.Timeframe
	Insight     domain.InsightView
}

// View is the render-ready model shared by every front end
type View struct {
	Positions             []domain.Position    `json:"positions"`
	Pending               []string             `json:"pending"` // Held symbols still waiting for a quote
	Totals                metrics.Totals       `json:"totals"`
	Timeline              timeline.Timeline    `json:"timeline"`
	Allocation            []allocator.Slice    `json:"allocation"`
	AllocationPlaceholder string               `json:"allocation_placeholder,omitempty"`
	Trending              []market.TrendingRow `json:"trending"`
	TrendingPlaceholder   string               `json:"trending_placeholder,omitempty"`
	LastUpdated           *time.Time           `json:"last_updated,omitempty"`
	Timeframe             domain.Timeframe     `json:"timeframe"`
	Insight               domain.InsightView   `json:"insight"`
}

// Build derives the full view model from a state snapshot
// Logic:
//  1. Positions from lots + quotes, totals from positions
//  2. Timeline for the selected timeframe, allocation over the total value
//  3. Trending rows from the cache, independent of holdings
//
// Build never mutates state
func Build(state State) View {
	tf := state.Timeframe
	if tf == "" {
		tf = domain.Timeframe24h
	}
	insight := state.Insight
	if insight == "" {
		insight = domain.InsightMarkets
	}

	quotes := state.Quotes
	if quotes == nil {
		quotes = domain.QuoteCache{}
	}

	positions := aggregator.Aggregate(state.Lots, quotes)
	totals := metrics.Summarize(positions)

	view := View{
		Positions: positions,
		Pending:   pendingSymbols(state.Lots, quotes),
		Totals:    totals,
		Timeline:  timeline.Build(positions, quotes, tf),
		Trending:  market.TrendingRows(quotes),
		Timeframe: tf,
		Insight:   insight,
	}

	slices, err := allocator.CalculateAllocation(positions, totals.Value)
	if err != nil || len(slices) == 0 {
		view.Allocation = []allocator.Slice{}
		view.AllocationPlaceholder = allocator.Placeholder
	} else {
		view.Allocation = slices
	}

	if len(view.Trending) == 0 {
		view.TrendingPlaceholder = market.TrendingPlaceholder
	}

	if !state.LastUpdated.IsZero() {
		ts := state.LastUpdated
		view.LastUpdated = &ts
	}

	return view
}

func pendingSymbols(lots []domain.Lot, quotes domain.QuoteCache) []string {
	symbols := make([]string, 0, len(lots))
	for _, lot := range lots {
		symbols = append(symbols, lot.Symbol)
	}

	pending := make([]string, 0)
	for _, symbol := range domain.NormalizeSymbols(symbols) {
		if _, ok := quotes.Get(symbol); !ok {
			pending = append(pending, symbol)
		}
	}
	return pending
}
