package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/adapter/quoteapi"
	"github.com/kaanzapkinus/assetstracker/internal/adapter/repository/filestore"
	"github.com/kaanzapkinus/assetstracker/internal/adapter/repository/memory"
	"github.com/kaanzapkinus/assetstracker/internal/adapter/repository/postgres"
	"github.com/kaanzapkinus/assetstracker/internal/config"
	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/logger"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/ledger"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
)

// Services is the wired application shared by the server, TUI and CLI
type Services struct {
	Config    *config.Config
	Logger    *zap.Logger
	Ledger    *ledger.LedgerService
	Market    *market.MarketService
	Dashboard *dashboard.DashboardService

	db *postgres.DB
}

// NewLogger builds the logger described by cfg; a nil console means stdout
func NewLogger(cfg *config.Config, console io.Writer) (*zap.Logger, error) {
	lc := logger.DefaultConfig()
	lc.Level = cfg.LogLevel
	lc.LogFile = cfg.LogFile
	lc.Development = cfg.Development
	lc.Console = console
	return logger.New(lc)
}

// New opens the configured store and wires the services on top of it
// Logic:
//  1. Open the store backend (file, memory or postgres)
//  2. Load the persisted ledger
//  3. Wire quote client, market and dashboard
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Services, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ledgerService := ledger.NewLedgerService(store, log.Named("ledger"))
	ledgerService.Load(ctx)

	client := quoteapi.NewClient(cfg.QuoteAPIURL, cfg.QuoteTimeout, log.Named("quoteapi"))
	marketService := market.NewMarketService(client, ledgerService, log.Named("market"))

	log.Info("services ready",
		zap.String("store", cfg.Store),
		zap.Int("lots", len(ledgerService.Lots())),
		zap.String("quote_api", cfg.QuoteAPIURL))

	return &Services{
		Config:    cfg,
		Logger:    log,
		Ledger:    ledgerService,
		Market:    marketService,
		Dashboard: dashboard.NewDashboardService(ledgerService, marketService, log.Named("dashboard")),
		db:        db,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, *postgres.DB, error) {
	switch cfg.Store {
	case config.StoreFile:
		store, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store, nil, nil

	case config.StoreMemory:
		return memory.New(), nil, nil

	case config.StorePostgres:
		db, err := postgres.NewDB(cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewKeyValueStore(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases the database connection, if any
func (s *Services) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
