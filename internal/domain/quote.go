package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is the latest market snapshot for a symbol, priced in USD
// Percent changes and market cap are optional upstream and stay invalid when absent
type Quote struct {
	Symbol           string              `json:"symbol"`
	Name             string              `json:"name"`
	Price            decimal.Decimal     `json:"price"`
	PercentChange1h  decimal.NullDecimal `json:"percent_change_1h"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
	MarketCap        decimal.NullDecimal `json:"market_cap"`
}

// PercentChange returns the percent change for the given timeframe
func (q Quote) PercentChange(tf Timeframe) decimal.NullDecimal {
	switch tf {
	case Timeframe1h:
		return q.PercentChange1h
	case Timeframe24h:
		return q.PercentChange24h
	case Timeframe7d:
		return q.PercentChange7d
	default:
		return decimal.NullDecimal{}
	}
}

// QuoteCache maps an upper-cased symbol to its last fetched quote
type QuoteCache map[string]Quote

// Get looks a quote up by symbol, case-insensitively
func (c QuoteCache) Get(symbol string) (Quote, bool) {
	q, ok := c[NormalizeSymbol(symbol)]
	return q, ok
}

// Merge copies every quote of other into c, replacing existing entries
// Symbols missing from other are left untouched
func (c QuoteCache) Merge(other map[string]Quote) {
	for sym, q := range other {
		c[NormalizeSymbol(sym)] = q
	}
}

// Clone returns an independent copy of the cache
func (c QuoteCache) Clone() QuoteCache {
	out := make(QuoteCache, len(c))
	for sym, q := range c {
		out[sym] = q
	}
	return out
}

// Timeframe selects which percent change drives the back-projection
type Timeframe string

const (
	Timeframe1h  Timeframe = "1h"
	Timeframe24h Timeframe = "24h"
	Timeframe7d  Timeframe = "7d"
)

// Timeframes lists the supported timeframes in display order
var Timeframes = []Timeframe{Timeframe1h, Timeframe24h, Timeframe7d}

// ParseTimeframe validates a timeframe identifier
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Timeframes {
		if tf == known {
			return tf, nil
		}
	}
	return "", &ValidationError{Field: "timeframe", Message: fmt.Sprintf("unknown timeframe %q", s)}
}

// Description is the label shown next to the timeline delta
func (tf Timeframe) Description() string {
	switch tf {
	case Timeframe1h:
		return "vs previous hour"
	case Timeframe24h:
		return "vs previous day"
	case Timeframe7d:
		return "vs previous week"
	default:
		return "Change"
	}
}

// Next cycles to the following timeframe
func (tf Timeframe) Next() Timeframe {
	for i, known := range Timeframes {
		if known == tf {
			return Timeframes[(i+1)%len(Timeframes)]
		}
	}
	return Timeframes[0]
}

// InsightView selects which insight panel is active
type InsightView string

const (
	InsightMarkets    InsightView = "markets"
	InsightTimeline   InsightView = "timeline"
	InsightAllocation InsightView = "allocation"
)

// InsightViews lists the insight panels in display order
var InsightViews = []InsightView{InsightMarkets, InsightTimeline, InsightAllocation}

// ParseInsightView validates an insight view identifier
func ParseInsightView(s string) (InsightView, error) {
	v := InsightView(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range InsightViews {
		if v == known {
			return v, nil
		}
	}
	return "", &ValidationError{Field: "insight", Message: fmt.Sprintf("unknown insight view %q", s)}
}

// Next cycles to the following insight view
func (v InsightView) Next() InsightView {
	for i, known := range InsightViews {
		if known == v {
			return InsightViews[(i+1)%len(InsightViews)]
		}
	}
	return InsightViews[0]
}
