package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// User-facing status messages
const (
	InvalidInputMessage   = "Please provide a valid symbol, amount and cost."
	NotFoundMessage       = "This symbol could not be found on CoinMarketCap."
	AddFailedMessage      = "Something went wrong while adding the asset."
	RefreshingMessage     = "Refreshing market data..."
	RefreshedMessage      = "Market data updated."
	ClearedMessage        = "All assets cleared."
	refreshFailedTemplate = "Unable to fetch CoinMarketCap data: %s"
)

// LotLedger is the ledger behaviour the dashboard needs
type LotLedger interface {
	Add(ctx context.Context, lot domain.Lot) error
	Remove(ctx context.Context, id string) error
	RemoveSymbol(ctx context.Context, symbol string) int
	Clear(ctx context.Context) int
	Lots() []domain.Lot
}

// QuoteMarket is the market behaviour the dashboard needs
type QuoteMarket interface {
	Refresh(ctx context.Context, extra ...string) error
	Resolve(ctx context.Context, symbol string) (domain.Quote, error)
	Quotes() domain.QuoteCache
	LastUpdated() time.Time
}

// AddAssetInput is the raw add-asset form
type AddAssetInput struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
	Cost   string `json:"cost"`
}

// DashboardService ties the ledger and the market together for the front ends
type DashboardService struct {
	Ledger LotLedger
	Market QuoteMarket
	Logger *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(ledger LotLedger, market QuoteMarket, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		Ledger: ledger,
		Market: market,
		Logger: logger,
	}
}

// AddAsset validates the form, confirms the symbol has a quote and records the lot
// Logic:
//  1. Parse symbol, amount (> 0) and cost (>= 0); failures never reach the network
//  2. Resolve the symbol against the quote API (unknown symbol: *domain.UnresolvedSymbolError)
//  3. Append the lot to the ledger
func (s *DashboardService) AddAsset(ctx context.Context, input AddAssetInput) (*domain.Lot, error) {
	symbol, amount, cost, err := ParseAddAssetInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.Market.Resolve(ctx, symbol); err != nil {
		return nil, err
	}

	lot, err := domain.NewLot(symbol, amount, cost)
	if err != nil {
		return nil, err
	}

	if err := s.Ledger.Add(ctx, *lot); err != nil {
		return nil, fmt.Errorf("failed to add lot: %w", err)
	}

	s.Logger.Info("asset added",
		zap.String("symbol", lot.Symbol),
		zap.String("amount", lot.Amount.String()),
		zap.String("cost", lot.Cost.String()))

	return lot, nil
}

// ParseAddAssetInput turns the raw form into typed values
func ParseAddAssetInput(input AddAssetInput) (string, decimal.Decimal, decimal.Decimal, error) {
	symbol := domain.NormalizeSymbol(input.Symbol)
	if symbol == "" {
		return "", decimal.Zero, decimal.Zero, &domain.ValidationError{Field: "symbol", Message: "symbol is required"}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil || !amount.IsPositive() {
		return "", decimal.Zero, decimal.Zero, &domain.ValidationError{Field: "amount", Message: "amount must be a positive number"}
	}

	cost, err := decimal.NewFromString(strings.TrimSpace(input.Cost))
	if err != nil || cost.IsNegative() {
		return "", decimal.Zero, decimal.Zero, &domain.ValidationError{Field: "cost", Message: "cost must be a non-negative number"}
	}

	return symbol, amount, cost, nil
}

// RemoveLot deletes one lot by id
func (s *DashboardService) RemoveLot(ctx context.Context, id string) error {
	return s.Ledger.Remove(ctx, id)
}

// RemovePosition deletes every lot of a symbol
// Returns domain.ErrLotNotFound when the symbol is not held
func (s *DashboardService) RemovePosition(ctx context.Context, symbol string) (int, error) {
	removed := s.Ledger.RemoveSymbol(ctx, symbol)
	if removed == 0 {
		return 0, fmt.Errorf("failed to remove position %s: %w", domain.NormalizeSymbol(symbol), domain.ErrLotNotFound)
	}
	return removed, nil
}

// Clear empties the ledger and returns how many lots were dropped (0 when it was already empty)
func (s *DashboardService) Clear(ctx context.Context) int {
	return s.Ledger.Clear(ctx)
}

// Refresh re-fetches quotes for the watchlist and every held symbol
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.Market.Refresh(ctx)
}

// Snapshot captures the current state with the given selections
func (s *DashboardService) Snapshot(tf domain.Timeframe, insight domain.InsightView) State {
	return State{
		Lots:        s.Ledger.Lots(),
		Quotes:      s.Market.Quotes(),
		LastUpdated: s.Market.LastUpdated(),
		Timeframe:   tf,
		Insight:     insight,
	}
}

// View builds the view model for the given selections
func (s *DashboardService) View(tf domain.Timeframe, insight domain.InsightView) View {
	return Build(s.Snapshot(tf, insight))
}

// AddErrorMessage turns an AddAsset failure into the status line text
func AddErrorMessage(err error) string {
	var validationErr *domain.ValidationError
	var unresolvedErr *domain.UnresolvedSymbolError
	switch {
	case errors.As(err, &validationErr):
		return InvalidInputMessage
	case errors.As(err, &unresolvedErr):
		return NotFoundMessage
	default:
		return AddFailedMessage
	}
}

// AddedMessage is the status line text after a successful add
func AddedMessage(symbol string) string {
	return fmt.Sprintf("%s added to your portfolio.", domain.NormalizeSymbol(symbol))
}

// RefreshErrorMessage turns a Refresh failure into the status line text
func RefreshErrorMessage(err error) string {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Sprintf(refreshFailedTemplate, fetchErr.Message)
	}
	return fmt.Sprintf(refreshFailedTemplate, err.Error())
}

// Lots returns the ledger contents in insertion order
func (s *DashboardService) Lots() []domain.Lot {
	return s.Ledger.Lots()
}
