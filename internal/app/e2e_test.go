package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kaanzapkinus/assetstracker/internal/adapter/api"
	grpcadapter "github.com/kaanzapkinus/assetstracker/internal/adapter/grpc"
	"github.com/kaanzapkinus/assetstracker/internal/config"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/market"
)

const testToken = "e2e-token"

// quoteProxy serves BTC and ETH; every other symbol is absent from the payload
func quoteProxy(t *testing.T, failing *atomic.Bool) *httptest.Server {
	t.Helper()

	known := map[string]string{
		"BTC": `{"symbol":"BTC","name":"Bitcoin","quote":{"USD":{"price":25000,"percent_change_1h":1,"percent_change_24h":25,"percent_change_7d":-50,"market_cap":500000000000}}}`,
		"ETH": `{"symbol":"ETH","name":"Ethereum","quote":{"USD":{"price":2000,"percent_change_24h":-2.5,"percent_change_7d":4,"market_cap":240000000000}}}`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":"upstream down"}`)
			return
		}

		entries := make([]string, 0)
		for _, symbol := range strings.Split(r.URL.Query().Get("symbols"), ",") {
			if entry, ok := known[symbol]; ok {
				entries = append(entries, fmt.Sprintf("%q:%s", symbol, entry))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":{"error_code":0},"data":{%s}}`, strings.Join(entries, ","))
	}))
}

func call(t *testing.T, client *http.Client, method, url, body string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

// TestEndToEnd drives the HTTP API over real services backed by the memory store and a fake quote proxy
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	var failing atomic.Bool
	proxy := quoteProxy(t, &failing)
	defer proxy.Close()

	cfg := testConfig(config.StoreMemory, "")
	cfg.QuoteAPIURL = proxy.URL

	services, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer services.Close()

	server := httptest.NewServer(api.NewServer(services.Dashboard, api.Options{Token: testToken}))
	defer server.Close()
	client := server.Client()

	t.Run("Add Known Symbol", func(t *testing.T) {
		status, body := call(t, client, http.MethodPost, server.URL+"/api/v1/lots", `{"symbol":"btc","amount":"2","cost":"20000"}`)
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, "BTC", body["symbol"])
	})

	t.Run("Add Unknown Symbol", func(t *testing.T) {
		status, _ := call(t, client, http.MethodPost, server.URL+"/api/v1/lots", `{"symbol":"nope","amount":"1","cost":"1"}`)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Add Invalid Amount", func(t *testing.T) {
		status, _ := call(t, client, http.MethodPost, server.URL+"/api/v1/lots", `{"symbol":"eth","amount":"-1","cost":"1"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Refresh And Dashboard", func(t *testing.T) {
		status, _ := call(t, client, http.MethodPost, server.URL+"/api/v1/refresh", "")
		require.Equal(t, http.StatusOK, status)

		status, view := call(t, client, http.MethodGet, server.URL+"/api/v1/dashboard?timeframe=24h&insight=timeline", "")
		require.Equal(t, http.StatusOK, status)

		totals := view["totals"].(map[string]interface{})
		assert.Equal(t, "50000", totals["value"])
		assert.Equal(t, "40000", totals["cost"])
		assert.Equal(t, "10000", totals["pnl"])
		assert.Len(t, view["positions"], 1)
		assert.Len(t, view["trending"], 2, "only BTC and ETH are quoted")

		timeline := view["timeline"].(map[string]interface{})
		assert.Equal(t, "40000", timeline["base"], "50000 after a 25% rise started at 40000")
	})

	t.Run("Poller Drives Health", func(t *testing.T) {
		reporter := grpcadapter.NewHealthReporter(zap.NewNop())
		poller := market.NewPoller(services.Market, time.Hour, 1, reporter, zap.NewNop())

		reporter.ReportRefresh(poller.RefreshWithRetry(ctx))
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, quotesHealth(t, reporter))

		failing.Store(true)
		defer failing.Store(false)

		reporter.ReportRefresh(poller.RefreshWithRetry(ctx))
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, quotesHealth(t, reporter))

		status, view := call(t, client, http.MethodGet, server.URL+"/api/v1/dashboard", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "50000", view["totals"].(map[string]interface{})["value"], "a failed refresh keeps the last quotes")
	})

	t.Run("Remove Position", func(t *testing.T) {
		status, body := call(t, client, http.MethodDelete, server.URL+"/api/v1/positions/btc", "")
		require.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 1, body["removed"])

		status, body = call(t, client, http.MethodGet, server.URL+"/api/v1/lots", "")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["lots"])
	})
}

func quotesHealth(t *testing.T, reporter *grpcadapter.HealthReporter) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := reporter.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: grpcadapter.QuotesService})
	require.NoError(t, err)
	return resp.Status
}
