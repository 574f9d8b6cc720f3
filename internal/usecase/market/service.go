package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// TrendingPlaceholder is shown when no watchlist symbol has a quote yet
const TrendingPlaceholder = "No trending asset data yet. Try refreshing."

// HoldingsProvider lists the symbols currently held in the ledger
type HoldingsProvider interface {
	Symbols() []string
}

// TrendingRow is one line of the market watchlist
// Missing percent changes are reported as 0, a missing market cap stays invalid
type TrendingRow struct {
	Symbol    string              `json:"symbol"`
	Name      string              `json:"name"`
	Price     decimal.Decimal     `json:"price"`
	Change24h decimal.Decimal     `json:"change_24h"`
	Change7d  decimal.Decimal     `json:"change_7d"`
	MarketCap decimal.NullDecimal `json:"market_cap"`
}

// MarketService owns the quote cache and keeps it fresh
type MarketService struct {
	Source   domain.QuoteSource
	Holdings HoldingsProvider
	Logger   *zap.Logger

	mu          sync.RWMutex
	quotes      domain.QuoteCache
	lastUpdated time.Time
	group       singleflight.Group
	now         func() time.Time
}

// NewMarketService creates a new MarketService instance
func NewMarketService(source domain.QuoteSource, holdings HoldingsProvider, logger *zap.Logger) *MarketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketService{
		Source:   source,
		Holdings: holdings,
		Logger:   logger,
		quotes:   make(domain.QuoteCache),
		now:      time.Now,
	}
}

// Refresh fetches quotes for the watchlist, every held symbol and any extra symbols
// Logic:
//  1. Build the symbol set: trending + held + extra, upper-cased and deduplicated
//  2. Concurrent refreshes of the same set share one in-flight request
//  3. The shared fetch ignores the starting caller's cancellation; each caller
//     stops waiting when its own ctx is done
//  4. On success merge into the cache (last write wins per symbol) and stamp LastUpdated
//  5. On failure the cache is left untouched
func (s *MarketService) Refresh(ctx context.Context, extra ...string) error {
	symbols := s.refreshSymbols(extra)
	if len(symbols) == 0 {
		return nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	key := strings.Join(symbols, ",")
	ch := s.group.DoChan(key, func() (interface{}, error) {
		quotes, err := s.Source.FetchQuotes(fetchCtx, symbols)
		if err != nil {
			return nil, err
		}
		s.merge(quotes)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to refresh quotes: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.Logger.Warn("market refresh failed", zap.Int("symbols", len(symbols)), zap.Error(res.Err))
			return fmt.Errorf("failed to refresh quotes: %w", res.Err)
		}
		s.Logger.Debug("market refreshed", zap.Int("symbols", len(symbols)), zap.Bool("shared", res.Shared))
		return nil
	}
}

func (s *MarketService) refreshSymbols(extra []string) []string {
	all := make([]string, 0, len(domain.TrendingSymbols)+len(extra))
	all = append(all, domain.TrendingSymbols...)
	if s.Holdings != nil {
		all = append(all, s.Holdings.Symbols()...)
	}
	all = append(all, extra...)
	return domain.NormalizeSymbols(all)
}

// Resolve fetches a single symbol and merges it into the cache, stamping LastUpdated
// Returns *domain.UnresolvedSymbolError when the response does not contain the symbol
func (s *MarketService) Resolve(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)

	quotes, err := s.Source.FetchQuotes(ctx, []string{symbol})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to resolve %s: %w", symbol, err)
	}

	quote, ok := domain.QuoteCache(quotes).Get(symbol)
	if !ok {
		return domain.Quote{}, &domain.UnresolvedSymbolError{Symbol: symbol}
	}

	s.merge(map[string]domain.Quote{symbol: quote})
	return quote, nil
}

func (s *MarketService) merge(quotes map[string]domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes.Merge(quotes)
	s.lastUpdated = s.now()
}

// Quotes returns a snapshot of the cache
func (s *MarketService) Quotes() domain.QuoteCache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotes.Clone()
}

// LastUpdated returns when the last successful refresh completed (zero before the first)
func (s *MarketService) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Trending returns the watchlist rows for symbols present in the cache, in watchlist order
func (s *MarketService) Trending() []TrendingRow {
	return TrendingRows(s.Quotes())
}

// TrendingRows builds the watchlist from a cache snapshot
func TrendingRows(quotes domain.QuoteCache) []TrendingRow {
	rows := make([]TrendingRow, 0, len(domain.TrendingSymbols))
	for _, symbol := range domain.TrendingSymbols {
		q, ok := quotes.Get(symbol)
		if !ok {
			continue
		}

		marketCap := q.MarketCap
		if marketCap.Valid && marketCap.Decimal.IsZero() {
			marketCap = decimal.NullDecimal{}
		}

		rows = append(rows, TrendingRow{
			Symbol:    symbol,
			Name:      q.Name,
			Price:     q.Price,
			Change24h: orZero(q.PercentChange24h),
			Change7d:  orZero(q.PercentChange7d),
			MarketCap: marketCap,
		})
	}
	return rows
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
