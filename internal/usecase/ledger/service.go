package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// StorageKey is the key the lot list is persisted under
const StorageKey = "assetpulse-assets"

// LedgerService owns the user's ordered list of lots
type LedgerService struct {
	Store  domain.KeyValueStore
	Logger *zap.Logger

	// writeMu orders mutations together with their store writes
	writeMu sync.Mutex
	mu      sync.RWMutex
	lots    []domain.Lot
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(store domain.KeyValueStore, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		Store:  store,
		Logger: logger,
		lots:   make([]domain.Lot, 0),
	}
}

// Load reads the persisted ledger, replacing the in-memory one
// Logic:
//   - Missing key: empty ledger
//   - Read failure or corrupt payload: warning logged, empty ledger
//   - Invalid lots inside a readable payload are skipped with a warning
func (s *LedgerService) Load(ctx context.Context) {
	lots := s.read(ctx)

	s.mu.Lock()
	s.lots = lots
	s.mu.Unlock()

	s.Logger.Debug("ledger loaded", zap.Int("lots", len(lots)))
}

func (s *LedgerService) read(ctx context.Context) []domain.Lot {
	empty := make([]domain.Lot, 0)

	raw, err := s.Store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.Logger.Warn("failed to read ledger, starting empty", zap.Error(err))
		}
		return empty
	}

	var stored []domain.Lot
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.Logger.Warn("failed to decode ledger, starting empty", zap.Error(err))
		return empty
	}

	lots := make([]domain.Lot, 0, len(stored))
	for _, lot := range stored {
		lot.Symbol = domain.NormalizeSymbol(lot.Symbol)
		if err := lot.Validate(); err != nil {
			s.Logger.Warn("skipping invalid stored lot", zap.String("id", lot.ID), zap.Error(err))
			continue
		}
		lots = append(lots, lot)
	}
	return lots
}

// Add appends a validated lot and persists the ledger
func (s *LedgerService) Add(ctx context.Context, lot domain.Lot) error {
	lot.Symbol = domain.NormalizeSymbol(lot.Symbol)
	if err := lot.Validate(); err != nil {
		return err
	}
	if lot.ID == "" {
		return &domain.ValidationError{Field: "id", Message: "id cannot be empty"}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.lots = append(s.lots, lot)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// Remove deletes the lot with the given id
// Returns domain.ErrLotNotFound if no lot has that id
func (s *LedgerService) Remove(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := -1
	for i, lot := range s.lots {
		if lot.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("failed to remove lot %s: %w", id, domain.ErrLotNotFound)
	}
	s.lots = append(s.lots[:idx], s.lots[idx+1:]...)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// RemoveSymbol deletes every lot of a symbol and returns how many were removed
// Nothing is persisted when no lot matched
func (s *LedgerService) RemoveSymbol(ctx context.Context, symbol string) int {
	symbol = domain.NormalizeSymbol(symbol)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	kept := make([]domain.Lot, 0, len(s.lots))
	for _, lot := range s.lots {
		if lot.Symbol != symbol {
			kept = append(kept, lot)
		}
	}
	removed := len(s.lots) - len(kept)
	s.lots = kept
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if removed > 0 {
		s.persist(ctx, snapshot)
	}
	return removed
}

// Clear empties the ledger and returns how many lots were dropped
// An already empty ledger is left alone
func (s *LedgerService) Clear(ctx context.Context) int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	removed := len(s.lots)
	s.lots = make([]domain.Lot, 0)
	s.mu.Unlock()

	if removed > 0 {
		s.persist(ctx, []domain.Lot{})
	}
	return removed
}

// Lots returns a copy of the ledger in insertion order
func (s *LedgerService) Lots() []domain.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Symbols returns the distinct held symbols, first-seen order
func (s *LedgerService) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.lots))
	for _, lot := range s.lots {
		symbols = append(symbols, lot.Symbol)
	}
	return domain.NormalizeSymbols(symbols)
}

func (s *LedgerService) copyLocked() []domain.Lot {
	out := make([]domain.Lot, len(s.lots))
	copy(out, s.lots)
	return out
}

// persist writes the ledger; failures are logged and never surface to the caller
func (s *LedgerService) persist(ctx context.Context, lots []domain.Lot) {
	raw, err := json.Marshal(lots)
	if err != nil {
		s.Logger.Warn("failed to encode ledger", zap.Error(err))
		return
	}
	if err := s.Store.Put(ctx, StorageKey, raw); err != nil {
		s.Logger.Warn("failed to persist ledger, keeping in-memory copy", zap.Error(err))
	}
}
