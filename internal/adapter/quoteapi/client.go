package quoteapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

const (
	quotesPath     = "/api/quotes"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20

	msgInvalidData   = "Server returned invalid data."
	msgUpstreamError = "CoinMarketCap error"
)

// quotesResponse mirrors the proxy payload
type quotesResponse struct {
	Status *struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]quoteEntry `json:"data"`
}

type quoteEntry struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Quote  struct {
		USD *usdQuote `json:"USD"`
	} `json:"quote"`
}

type usdQuote struct {
	Price            decimal.Decimal     `json:"price"`
	PercentChange1h  decimal.NullDecimal `json:"percent_change_1h"`
	PercentChange24h decimal.NullDecimal `json:"percent_change_24h"`
	PercentChange7d  decimal.NullDecimal `json:"percent_change_7d"`
	MarketCap        decimal.NullDecimal `json:"market_cap"`
}

type errorResponse struct {
	Details string `json:"details"`
	Error   string `json:"error"`
}

// Client fetches quotes from the quote proxy
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a quote client for the proxy at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("quoteapi"),
	}
}

// FetchQuotes issues one batched request for symbols
// Symbols are upper-cased and deduplicated; an empty set makes no request
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	symbols = domain.NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		return map[string]domain.Quote{}, nil
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	endpoint := c.baseURL + quotesPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("quote request failed", zap.Error(err))
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorTransport, Message: transportMessage(err), Err: err}
	}

	c.logger.Debug("quote response",
		zap.Int("status", resp.StatusCode),
		zap.Int("symbols", len(symbols)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{Kind: domain.FetchErrorStatus, Message: statusMessage(resp.StatusCode, body)}
	}

	var payload quotesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchErrorDecode, Message: msgInvalidData, Err: err}
	}

	if payload.Status != nil && payload.Status.ErrorCode != 0 {
		msg := payload.Status.ErrorMessage
		if msg == "" {
			msg = msgUpstreamError
		}
		return nil, &domain.FetchError{Kind: domain.FetchErrorUpstream, Message: msg}
	}

	return toQuotes(payload.Data), nil
}

// toQuotes keeps entries carrying a USD quote, keyed by upper-cased symbol
func toQuotes(data map[string]quoteEntry) map[string]domain.Quote {
	quotes := make(map[string]domain.Quote, len(data))
	for key, entry := range data {
		usd := entry.Quote.USD
		if usd == nil {
			continue
		}

		symbol := domain.NormalizeSymbol(entry.Symbol)
		if symbol == "" {
			symbol = domain.NormalizeSymbol(key)
		}

		quotes[symbol] = domain.Quote{
			Symbol:           symbol,
			Name:             entry.Name,
			Price:            usd.Price,
			PercentChange1h:  usd.PercentChange1h,
			PercentChange24h: usd.PercentChange24h,
			PercentChange7d:  usd.PercentChange7d,
			MarketCap:        usd.MarketCap,
		}
	}
	return quotes
}

// statusMessage prefers the proxy's details, then its error, then the bare status code
func statusMessage(status int, body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Details != "" {
			return payload.Details
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("API error: %d", status)
}

func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "request timed out"
		}
		return urlErr.Err.Error()
	}
	return err.Error()
}
