package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

// Service is the dashboard behaviour exposed over HTTP
type Service interface {
	AddAsset(ctx context.Context, input dashboard.AddAssetInput) (*domain.Lot, error)
	RemoveLot(ctx context.Context, id string) error
	RemovePosition(ctx context.Context, symbol string) (int, error)
	Clear(ctx context.Context) int
	Refresh(ctx context.Context) error
	Lots() []domain.Lot
	View(tf domain.Timeframe, insight domain.InsightView) dashboard.View
}

// Options configures the HTTP server
type Options struct {
	Token  string // Shared secret for /api/ routes; empty disables auth
	Logger *zap.Logger
}

// NewServer builds the router with the OpenAPI docs mounted at /docs
func NewServer(svc Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger.Named("http")))
	router.Use(middleware.Recoverer)
	router.Use(tokenAuth(opts.Token))

	cfg := huma.DefaultConfig("Assets Tracker API", "1.0.0")
	api := humachi.New(router, cfg)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	registerDashboardHandlers(api, svc)
	registerLotHandlers(api, svc)
	registerMarketHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	var unresolvedErr *domain.UnresolvedSymbolError
	var fetchErr *domain.FetchError
	switch {
	case errors.As(err, &validationErr):
		return huma.Error400BadRequest(validationErr.Error())
	case errors.As(err, &unresolvedErr):
		return huma.Error404NotFound(unresolvedErr.Error())
	case errors.Is(err, domain.ErrLotNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.As(err, &fetchErr):
		return huma.Error502BadGateway(fetchErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("request timed out")
	}
	return huma.Error500InternalServerError(err.Error())
}

type dashboardInput struct {
	Timeframe string `query:"timeframe" default:"24h" doc:"Timeline window: 1h, 24h or 7d"`
	Insight   string `query:"insight" default:"markets" doc:"Active insight panel: markets, timeline or allocation"`
}

type dashboardOutput struct {
	Body dashboard.View
}

type refreshOutput struct {
	Body struct {
		LastUpdated time.Time `json:"last_updated"`
	}
}

func registerDashboardHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Positions, totals, timeline, allocation and trending in one view",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *dashboardInput) (*dashboardOutput, error) {
		tf, err := domain.ParseTimeframe(input.Timeframe)
		if err != nil {
			return nil, mapErr(err)
		}
		insight, err := domain.ParseInsightView(input.Insight)
		if err != nil {
			return nil, mapErr(err)
		}
		return &dashboardOutput{Body: svc.View(tf, insight)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-quotes",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Re-fetch quotes for the watchlist and every held symbol",
		Tags:        []string{"Dashboard"},
	}, func(ctx context.Context, input *struct{}) (*refreshOutput, error) {
		if err := svc.Refresh(ctx); err != nil {
			return nil, mapErr(err)
		}
		out := &refreshOutput{}
		if last := svc.View(domain.Timeframe24h, domain.InsightMarkets).LastUpdated; last != nil {
			out.Body.LastUpdated = *last
		}
		return out, nil
	})
}

type lotListOutput struct {
	Body struct {
		Lots []domain.Lot `json:"lots"`
	}
}

type addLotInput struct {
	Body dashboard.AddAssetInput
}

type lotOutput struct {
	Body domain.Lot
}

type lotIDInput struct {
	ID string `path:"id"`
}

type symbolInput struct {
	Symbol string `path:"symbol"`
}

type removePositionOutput struct {
	Body struct {
		Symbol  string `json:"symbol"`
		Removed int    `json:"removed"`
	}
}

func registerLotHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-lots",
		Method:      http.MethodGet,
		Path:        "/api/v1/lots",
		Summary:     "List purchase lots in insertion order",
		Tags:        []string{"Lots"},
	}, func(ctx context.Context, input *struct{}) (*lotListOutput, error) {
		out := &lotListOutput{}
		out.Body.Lots = svc.Lots()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-lot",
		Method:        http.MethodPost,
		Path:          "/api/v1/lots",
		Summary:       "Record a purchase lot after confirming the symbol has a quote",
		Tags:          []string{"Lots"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *addLotInput) (*lotOutput, error) {
		lot, err := svc.AddAsset(ctx, input.Body)
		if err != nil {
			return nil, mapErr(err)
		}
		return &lotOutput{Body: *lot}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "clear-lots",
		Method:        http.MethodDelete,
		Path:          "/api/v1/lots",
		Summary:       "Remove every lot",
		Tags:          []string{"Lots"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		svc.Clear(ctx)
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-lot",
		Method:        http.MethodDelete,
		Path:          "/api/v1/lots/{id}",
		Summary:       "Remove one lot",
		Tags:          []string{"Lots"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *lotIDInput) (*struct{}, error) {
		if err := svc.RemoveLot(ctx, input.ID); err != nil {
			return nil, mapErr(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-position",
		Method:      http.MethodDelete,
		Path:        "/api/v1/positions/{symbol}",
		Summary:     "Remove every lot of a symbol",
		Tags:        []string{"Lots"},
	}, func(ctx context.Context, input *symbolInput) (*removePositionOutput, error) {
		removed, err := svc.RemovePosition(ctx, input.Symbol)
		if err != nil {
			return nil, mapErr(err)
		}
		out := &removePositionOutput{}
		out.Body.Symbol = domain.NormalizeSymbol(input.Symbol)
		out.Body.Removed = removed
		return out, nil
	})
}
