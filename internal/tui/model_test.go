package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

type fakeService struct {
	mu         sync.Mutex
	lots       []domain.Lot
	quotes     domain.QuoteCache
	addErr     error
	refreshErr error
	addCalls   []dashboard.AddAssetInput
	removed    []string
	cleared    bool
	refreshes  int
	lastTF     domain.Timeframe
	lastView   domain.InsightView
}

func newFakeService() *fakeService {
	return &fakeService{quotes: domain.QuoteCache{
		"BTC": {Symbol: "BTC", Name: "Bitcoin", Price: decimal.NewFromInt(25000)},
	}}
}

func (f *fakeService) AddAsset(ctx context.Context, input dashboard.AddAssetInput) (*domain.Lot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, input)
	if f.addErr != nil {
		return nil, f.addErr
	}
	symbol, amount, cost, err := dashboard.ParseAddAssetInput(input)
	if err != nil {
		return nil, err
	}
	lot := domain.Lot{ID: fmt.Sprintf("lot-%d", len(f.lots)+1), Symbol: symbol, Amount: amount, Cost: cost}
	f.lots = append(f.lots, lot)
	return &lot, nil
}

func (f *fakeService) RemovePosition(ctx context.Context, symbol string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, symbol)
	kept := f.lots[:0]
	for _, lot := range f.lots {
		if lot.Symbol != symbol {
			kept = append(kept, lot)
		}
	}
	n := len(f.lots) - len(kept)
	f.lots = kept
	if n == 0 {
		return 0, domain.ErrLotNotFound
	}
	return n, nil
}

func (f *fakeService) Clear(ctx context.Context) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	n := len(f.lots)
	f.lots = nil
	return n
}

func (f *fakeService) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeService) View(tf domain.Timeframe, insight domain.InsightView) dashboard.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTF = tf
	f.lastView = insight
	return dashboard.Build(dashboard.State{
		Lots:        append([]domain.Lot(nil), f.lots...),
		Quotes:      f.quotes.Clone(),
		LastUpdated: time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local),
		Timeframe:   tf,
		Insight:     insight,
	})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func fillForm(m *Model, symbol, amount, cost string) tea.Cmd {
	return press(m, runes("a"), runes(symbol), tab, runes(amount), tab, runes(cost), enter)
}

func TestAddAsset_Success(t *testing.T) {
	svc := newFakeService()
	m := New(svc, Options{})

	cmd := fillForm(m, "btc", "2", "20000")
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, addDoneMsg{}, msg)

	clearCmd := press(m, msg)

	require.Len(t, svc.addCalls, 1)
	assert.Equal(t, dashboard.AddAssetInput{Symbol: "btc", Amount: "2", Cost: "20000"}, svc.addCalls[0])
	assert.Equal(t, "BTC added to your portfolio.", m.status)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.inputs[fieldSymbol].Value(), "form reset after success")
	require.Len(t, m.view.Positions, 1)
	assert.Equal(t, "50000", m.view.Totals.Value.String())
	assert.NotNil(t, clearCmd, "success schedules a status clear")

	press(m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.status)
}

func TestAddAsset_InvalidInputNeverCallsService(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		cost   string
	}{
		{name: "Zero amount", amount: "0", cost: "5"},
		{name: "Negative amount", amount: "-1", cost: "5"},
		{name: "Non-numeric cost", amount: "1", cost: "abc"},
		{name: "Negative cost", amount: "1", cost: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			m := New(svc, Options{})

			cmd := fillForm(m, "BTC", tt.amount, tt.cost)

			assert.Nil(t, cmd)
			assert.Empty(t, svc.addCalls)
			assert.Equal(t, dashboard.InvalidInputMessage, m.status)
			assert.Equal(t, modeForm, m.mode, "form stays open for correction")
		})
	}
}

func TestAddAsset_UnknownSymbol(t *testing.T) {
	svc := newFakeService()
	svc.addErr = &domain.UnresolvedSymbolError{Symbol: "NOPE"}
	m := New(svc, Options{})

	cmd := fillForm(m, "nope", "1", "1")
	require.NotNil(t, cmd)
	press(m, cmd())

	assert.Equal(t, dashboard.NotFoundMessage, m.status)
	assert.Equal(t, statusError, m.statusKind)
	assert.Empty(t, m.view.Positions)
}

func TestForm_Cancel(t *testing.T) {
	m := New(newFakeService(), Options{})

	press(m, runes("a"), runes("x"))
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, "x", m.inputs[fieldSymbol].Value(), "keys go to the form, not the dashboard")

	press(m, esc)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestStatus_StaleClearIgnored(t *testing.T) {
	m := New(newFakeService(), Options{})

	m.setStatus(statusSuccess, "first")
	stale := m.statusSeq
	m.setStatus(statusError, "second")

	press(m, clearStatusMsg{seq: stale})

	assert.Equal(t, "second", m.status)
}

func TestRefresh(t *testing.T) {
	svc := newFakeService()
	m := New(svc, Options{})

	cmd := press(m, runes("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, dashboard.RefreshingMessage, m.status)
	assert.Nil(t, press(m, runes("r")), "no second refresh while one is running")

	press(m, cmd())

	assert.Equal(t, 1, svc.refreshes)
	assert.Equal(t, dashboard.RefreshedMessage, m.status)
	assert.False(t, m.refreshing)
}

func TestRefresh_Failure(t *testing.T) {
	svc := newFakeService()
	svc.refreshErr = fmt.Errorf("failed to refresh quotes: %w", &domain.FetchError{Kind: domain.FetchErrorStatus, Message: "API error: 503"})
	m := New(svc, Options{})

	cmd := press(m, runes("r"))
	press(m, cmd())

	assert.Equal(t, "Unable to fetch CoinMarketCap data: API error: 503", m.status)
	assert.Equal(t, statusError, m.statusKind)
}

func TestSelectors(t *testing.T) {
	svc := newFakeService()
	m := New(svc, Options{})

	press(m, runes("t"))
	assert.Equal(t, domain.Timeframe7d, svc.lastTF)

	press(m, runes("t"))
	assert.Equal(t, domain.Timeframe1h, svc.lastTF)

	press(m, runes("v"))
	assert.Equal(t, domain.InsightTimeline, svc.lastView)
	assert.Contains(t, m.View(), "[1h]")

	press(m, runes("v"))
	assert.Equal(t, domain.InsightAllocation, svc.lastView)
}

func TestRemoveSelectedPosition(t *testing.T) {
	svc := newFakeService()
	svc.lots = []domain.Lot{
		{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)},
		{ID: "b", Symbol: "BTC", Amount: decimal.NewFromInt(1), Cost: decimal.NewFromInt(2)},
	}
	m := New(svc, Options{})

	cmd := press(m, runes("d"))
	require.NotNil(t, cmd)
	press(m, cmd())

	assert.Equal(t, []string{"BTC"}, svc.removed)
	assert.Equal(t, "BTC removed from your portfolio.", m.status)
	assert.Empty(t, m.view.Positions)
}

func TestRemove_NothingSelected(t *testing.T) {
	svc := newFakeService()
	m := New(svc, Options{})

	assert.Nil(t, press(m, runes("d")))
	assert.Empty(t, svc.removed)
}

func TestClearAll(t *testing.T) {
	svc := newFakeService()
	svc.lots = []domain.Lot{{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(1), Cost: decimal.NewFromInt(1)}}
	m := New(svc, Options{})

	cmd := press(m, runes("x"))
	press(m, cmd())

	assert.True(t, svc.cleared)
	assert.Empty(t, m.view.Positions)
	assert.Equal(t, dashboard.ClearedMessage, m.status)
}

func TestClearAll_EmptyLedgerIsSilent(t *testing.T) {
	m := New(newFakeService(), Options{})

	cmd := press(m, runes("x"))
	assert.Nil(t, press(m, cmd()))
	assert.Empty(t, m.status)
}

func TestQuit(t *testing.T) {
	m := New(newFakeService(), Options{})

	cmd := press(m, runes("q"))

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	svc := newFakeService()
	svc.lots = []domain.Lot{
		{ID: "a", Symbol: "BTC", Amount: decimal.NewFromInt(2), Cost: decimal.NewFromInt(20000)},
		{ID: "b", Symbol: "DOGE", Amount: decimal.NewFromInt(100), Cost: decimal.NewFromInt(1)},
	}
	m := New(svc, Options{})
	press(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	out := m.View()

	for _, want := range []string{"Assets Tracker", "Last sync: 03:04", "BTC", "$50,000", "Waiting for quotes: DOGE", "Markets"} {
		assert.Contains(t, out, want)
	}
}

func TestView_FormShowsSuggestions(t *testing.T) {
	m := New(newFakeService(), Options{})

	press(m, runes("a"), runes("so"))

	assert.Contains(t, m.View(), "SOL Solana")
}

func TestAutoRefreshReschedules(t *testing.T) {
	svc := newFakeService()
	m := New(svc, Options{RefreshInterval: time.Minute})

	cmd := press(m, autoRefreshMsg{})

	require.NotNil(t, cmd)
	assert.True(t, m.refreshing)
}
