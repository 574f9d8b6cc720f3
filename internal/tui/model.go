package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/render"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

// StatusTimeout is how long a success message stays on the status line
const StatusTimeout = 2 * time.Second

// Service is the dashboard behaviour the TUI drives
type Service interface {
	AddAsset(ctx context.Context, input dashboard.AddAssetInput) (*domain.Lot, error)
	RemovePosition(ctx context.Context, symbol string) (int, error)
	Clear(ctx context.Context) int
	Refresh(ctx context.Context) error
	View(tf domain.Timeframe, insight domain.InsightView) dashboard.View
}

// Options configures the dashboard model
type Options struct {
	Context         context.Context
	RefreshInterval time.Duration // Zero disables automatic refresh
	Logger          *zap.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeForm
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Form field indexes
const (
	fieldSymbol = iota
	fieldAmount
	fieldCost
)

type (
	refreshDoneMsg struct{ err error }
	addDoneMsg     struct {
		lot *domain.Lot
		err error
	}
	removeDoneMsg struct {
		symbol  string
		removed int
		err     error
	}
	clearDoneMsg   struct{ removed int }
	clearStatusMsg struct{ seq int }
	autoRefreshMsg struct{}
)

// Model is the interactive dashboard
type Model struct {
	svc    Service
	ctx    context.Context
	logger *zap.Logger
	keys   KeyMap
	help   help.Model

	interval time.Duration

	mode   mode
	inputs []textinput.Model
	focus  int

	table     table.Model
	view      dashboard.View
	timeframe domain.Timeframe
	insight   domain.InsightView

	status     string
	statusKind statusKind
	statusSeq  int
	refreshing bool

	width  int
	height int
}

// New creates the dashboard model with the 24h timeframe and markets view selected
func New(svc Service, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Model{
		svc:       svc,
		ctx:       ctx,
		logger:    logger,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		interval:  opts.RefreshInterval,
		inputs:    newInputs(),
		table:     newPositionsTable(),
		timeframe: domain.Timeframe24h,
		insight:   domain.InsightMarkets,
	}
	m.rebuild()
	return m
}

func newInputs() []textinput.Model {
	inputs := make([]textinput.Model, 3)

	inputs[fieldSymbol] = textinput.New()
	inputs[fieldSymbol].Prompt = "Symbol "
	inputs[fieldSymbol].Placeholder = "BTC"
	inputs[fieldSymbol].CharLimit = 12

	inputs[fieldAmount] = textinput.New()
	inputs[fieldAmount].Prompt = "Amount "
	inputs[fieldAmount].Placeholder = "0.5"
	inputs[fieldAmount].CharLimit = 32

	inputs[fieldCost] = textinput.New()
	inputs[fieldCost].Prompt = "Unit cost (USD) "
	inputs[fieldCost].Placeholder = "30000"
	inputs[fieldCost].CharLimit = 32

	return inputs
}

func newPositionsTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "Asset", Width: 8},
			{Title: "Amount", Width: 12},
			{Title: "Unit cost", Width: 14},
			{Title: "Price", Width: 14},
			{Title: "Value", Width: 14},
			{Title: "P&L", Width: 24},
		}),
		table.WithFocused(true),
		table.WithHeight(6),
	)
}

// Init starts with a refresh so the trending list and held quotes load immediately
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRefresh(), m.scheduleRefresh())
}

// Update handles key presses and async results
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		m.rebuild()
		if msg.err != nil {
			m.logger.Warn("refresh failed", zap.Error(msg.err))
			return m, m.setStatus(statusError, dashboard.RefreshErrorMessage(msg.err))
		}
		return m, m.setStatus(statusSuccess, dashboard.RefreshedMessage)

	case addDoneMsg:
		m.rebuild()
		if msg.err != nil {
			m.logger.Warn("add asset failed", zap.Error(msg.err))
			return m, m.setStatus(statusError, dashboard.AddErrorMessage(msg.err))
		}
		m.resetForm()
		return m, m.setStatus(statusSuccess, dashboard.AddedMessage(msg.lot.Symbol))

	case removeDoneMsg:
		m.rebuild()
		if msg.err != nil {
			m.logger.Warn("remove position failed", zap.String("symbol", msg.symbol), zap.Error(msg.err))
			return m, m.setStatus(statusError, "Unable to remove "+msg.symbol+".")
		}
		return m, m.setStatus(statusSuccess, msg.symbol+" removed from your portfolio.")

	case clearDoneMsg:
		if msg.removed == 0 {
			return m, nil
		}
		m.rebuild()
		return m, m.setStatus(statusSuccess, dashboard.ClearedMessage)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case autoRefreshMsg:
		return m, tea.Batch(m.startRefresh(), m.scheduleRefresh())

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		m.mode = modeForm
		m.focus = fieldSymbol
		return m, m.focusInput()

	case key.Matches(msg, m.keys.Remove):
		row := m.table.SelectedRow()
		if len(row) == 0 {
			return m, nil
		}
		symbol := row[0]
		return m, func() tea.Msg {
			removed, err := m.svc.RemovePosition(m.ctx, symbol)
			return removeDoneMsg{symbol: symbol, removed: removed, err: err}
		}

	case key.Matches(msg, m.keys.Clear):
		return m, func() tea.Msg {
			return clearDoneMsg{removed: m.svc.Clear(m.ctx)}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.startRefresh()

	case key.Matches(msg, m.keys.Timeframe):
		m.timeframe = m.timeframe.Next()
		m.rebuild()
		return m, nil

	case key.Matches(msg, m.keys.Insight):
		m.insight = m.insight.Next()
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		m.blurInputs()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.focusInput()

	case key.Matches(msg, m.keys.PrevField):
		m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
		return m, m.focusInput()

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates locally so malformed input never reaches the network
func (m *Model) submit() tea.Cmd {
	input := dashboard.AddAssetInput{
		Symbol: m.inputs[fieldSymbol].Value(),
		Amount: m.inputs[fieldAmount].Value(),
		Cost:   m.inputs[fieldCost].Value(),
	}
	if _, _, _, err := dashboard.ParseAddAssetInput(input); err != nil {
		return m.setStatus(statusError, dashboard.AddErrorMessage(err))
	}

	return func() tea.Msg {
		lot, err := m.svc.AddAsset(m.ctx, input)
		return addDoneMsg{lot: lot, err: err}
	}
}

// startRefresh returns nil while a refresh is already running
func (m *Model) startRefresh() tea.Cmd {
	if m.refreshing {
		return nil
	}
	m.refreshing = true
	m.status = dashboard.RefreshingMessage
	m.statusKind = statusInfo
	m.statusSeq++
	return func() tea.Msg {
		return refreshDoneMsg{err: m.svc.Refresh(m.ctx)}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return autoRefreshMsg{} })
}

// setStatus shows a message; success messages clear themselves after StatusTimeout
func (m *Model) setStatus(kind statusKind, text string) tea.Cmd {
	m.status = text
	m.statusKind = kind
	m.statusSeq++
	if kind != statusSuccess {
		return nil
	}
	seq := m.statusSeq
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) focusInput() tea.Cmd {
	m.blurInputs()
	return m.inputs[m.focus].Focus()
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.blurInputs()
	m.focus = fieldSymbol
	m.mode = modeBrowse
}

// rebuild takes a fresh snapshot and refreshes the table rows
func (m *Model) rebuild() {
	m.view = m.svc.View(m.timeframe, m.insight)

	rows := make([]table.Row, 0, len(m.view.Positions))
	for _, pos := range m.view.Positions {
		rows = append(rows, table.Row{
			pos.Symbol,
			pos.Amount.String(),
			render.Price(pos.UnitCost),
			render.Price(pos.Price),
			render.Currency(pos.Value, 0),
			render.Currency(pos.PnL, 0) + " (" + render.Percent(pos.PnLPct) + ")",
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}
