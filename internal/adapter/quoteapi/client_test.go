package quoteapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

const okPayload = `{
  "status": {"error_code": 0, "error_message": null},
  "data": {
    "BTC": {
      "symbol": "BTC",
      "name": "Bitcoin",
      "quote": {"USD": {
        "price": 25000.5,
        "percent_change_1h": 0.12,
        "percent_change_24h": -1.5,
        "percent_change_7d": null,
        "market_cap": 487000000000
      }}
    },
    "ETH": {
      "symbol": "ETH",
      "name": "Ethereum",
      "quote": {"USD": {"price": 1800}}
    },
    "NOQ": {
      "symbol": "NOQ",
      "name": "No Quote",
      "quote": {}
    }
  }
}`

func newServer(t *testing.T, status int, body string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quotes", r.URL.Path)
		if seen != nil {
			*seen = r.URL.Query().Get("symbols")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchQuotes_Success(t *testing.T) {
	var seen string
	srv := newServer(t, http.StatusOK, okPayload, &seen)
	client := NewClient(srv.URL+"/", time.Second, zap.NewNop())

	quotes, err := client.FetchQuotes(context.Background(), []string{"btc", "ETH", "btc", " ", "noq"})

	require.NoError(t, err)
	assert.Equal(t, "BTC,ETH,NOQ", seen, "one batched request with deduplicated upper-case symbols")

	require.Len(t, quotes, 2, "entries without a USD quote are skipped")

	btc := quotes["BTC"]
	assert.Equal(t, "Bitcoin", btc.Name)
	assert.True(t, btc.Price.Equal(decimal.RequireFromString("25000.5")))
	assert.True(t, btc.PercentChange24h.Valid)
	assert.True(t, btc.PercentChange24h.Decimal.Equal(decimal.RequireFromString("-1.5")))
	assert.False(t, btc.PercentChange7d.Valid, "null change stays unknown")
	assert.True(t, btc.MarketCap.Valid)

	eth := quotes["ETH"]
	assert.False(t, eth.PercentChange1h.Valid, "absent change stays unknown")
	assert.False(t, eth.MarketCap.Valid)
}

func TestFetchQuotes_EmptySymbolsMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	quotes, err := client.FetchQuotes(context.Background(), []string{"", "  "})

	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetchQuotes_MissingSymbolIsNotAnError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"status":{"error_code":0},"data":{}}`, nil)
	client := NewClient(srv.URL, time.Second, nil)

	quotes, err := client.FetchQuotes(context.Background(), []string{"NOPE"})

	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFetchQuotes_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind domain.FetchErrorKind
		wantMsg  string
	}{
		{
			name:     "Non-2xx with details",
			status:   http.StatusBadGateway,
			body:     `{"error":"Upstream failed","details":"rate limit reached"}`,
			wantKind: domain.FetchErrorStatus,
			wantMsg:  "rate limit reached",
		},
		{
			name:     "Non-2xx with error only",
			status:   http.StatusBadRequest,
			body:     `{"error":"symbols query is required"}`,
			wantKind: domain.FetchErrorStatus,
			wantMsg:  "symbols query is required",
		},
		{
			name:     "Non-2xx without JSON body",
			status:   http.StatusInternalServerError,
			body:     `<html>oops</html>`,
			wantKind: domain.FetchErrorStatus,
			wantMsg:  "API error: 500",
		},
		{
			name:     "Malformed body",
			status:   http.StatusOK,
			body:     `{"data": [`,
			wantKind: domain.FetchErrorDecode,
			wantMsg:  "Server returned invalid data.",
		},
		{
			name:     "Upstream error with message",
			status:   http.StatusOK,
			body:     `{"status":{"error_code":1002,"error_message":"API key missing."}}`,
			wantKind: domain.FetchErrorUpstream,
			wantMsg:  "API key missing.",
		},
		{
			name:     "Upstream error without message",
			status:   http.StatusOK,
			body:     `{"status":{"error_code":500}}`,
			wantKind: domain.FetchErrorUpstream,
			wantMsg:  "CoinMarketCap error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil)
			client := NewClient(srv.URL, time.Second, nil)

			quotes, err := client.FetchQuotes(context.Background(), []string{"BTC"})

			assert.Nil(t, quotes)
			var fetchErr *domain.FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.wantKind, fetchErr.Kind)
			assert.Equal(t, tt.wantMsg, fetchErr.Message)
		})
	}
}

func TestFetchQuotes_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, nil)
	_, err := client.FetchQuotes(context.Background(), []string{"BTC"})

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.FetchErrorTransport, fetchErr.Kind)
	assert.True(t, fetchErr.Retryable())
}

func TestFetchQuotes_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, 5*time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchQuotes(ctx, []string{"BTC"})

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.FetchErrorTransport, fetchErr.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
