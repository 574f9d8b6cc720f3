package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
)

type trendingOutput struct {
	Body struct {
		Rows        []market.TrendingRow `json:"rows"`
		Placeholder string               `json:"placeholder,omitempty"`
	}
}

type symbolSearchInput struct {
	Query string `query:"q" doc:"Symbol prefix or name fragment, case-insensitive"`
}

type symbolSearchOutput struct {
	Body struct {
		Matches []domain.SymbolInfo `json:"matches"`
	}
}

func registerMarketHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-trending",
		Method:      http.MethodGet,
		Path:        "/api/v1/trending",
		Summary:     "Cached quotes for the fixed trending watchlist",
		Tags:        []string{"Market"},
	}, func(ctx context.Context, input *struct{}) (*trendingOutput, error) {
		view := svc.View(domain.Timeframe24h, domain.InsightMarkets)
		out := &trendingOutput{}
		out.Body.Rows = view.Trending
		out.Body.Placeholder = view.TrendingPlaceholder
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-symbols",
		Method:      http.MethodGet,
		Path:        "/api/v1/symbols",
		Summary:     "Symbol suggestions from the built-in library",
		Tags:        []string{"Market"},
	}, func(ctx context.Context, input *symbolSearchInput) (*symbolSearchOutput, error) {
		out := &symbolSearchOutput{}
		out.Body.Matches = domain.MatchSymbols(input.Query)
		if out.Body.Matches == nil {
			out.Body.Matches = []domain.SymbolInfo{}
		}
		return out, nil
	})
}
