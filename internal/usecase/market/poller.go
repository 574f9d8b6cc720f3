package market

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// Refresher is the part of MarketService the poller drives
type Refresher interface {
	Refresh(ctx context.Context, extra ...string) error
}

// StatusReporter receives the outcome of every polling round
// err is nil after a successful refresh
type StatusReporter interface {
	ReportRefresh(err error)
}

// Poller refreshes market data on a fixed interval
type Poller struct {
	Market         Refresher
	Interval       time.Duration
	MaxTries       uint
	InitialBackoff time.Duration
	Reporter       StatusReporter
	Logger         *zap.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(market Refresher, interval time.Duration, maxTries uint, reporter StatusReporter, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTries == 0 {
		maxTries = 1
	}
	return &Poller{
		Market:         market,
		Interval:       interval,
		MaxTries:       maxTries,
		InitialBackoff: time.Second,
		Reporter:       reporter,
		Logger:         logger,
	}
}

// Run refreshes once immediately and then on every tick until ctx is cancelled
// Round failures are reported, never returned
func (p *Poller) Run(ctx context.Context) error {
	p.Logger.Info("quote poller started", zap.Duration("interval", p.Interval))

	p.round(ctx)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("quote poller stopped")
			return nil
		case <-ticker.C:
			p.round(ctx)
		}
	}
}

func (p *Poller) round(ctx context.Context) {
	err := p.RefreshWithRetry(ctx)
	if err != nil && ctx.Err() != nil {
		// shutting down, not a market failure
		return
	}
	if err != nil {
		p.Logger.Error("quote refresh gave up", zap.Error(err))
	}
	if p.Reporter != nil {
		p.Reporter.ReportRefresh(err)
	}
}

// RefreshWithRetry runs one refresh with exponential backoff
// Upstream errors reported inside a well-formed payload are not retried
func (p *Poller) RefreshWithRetry(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	if p.InitialBackoff > 0 {
		policy.InitialInterval = p.InitialBackoff
		policy.MaxInterval = p.InitialBackoff * 10
	}

	notify := func(err error, next time.Duration) {
		p.Logger.Warn("quote refresh failed, retrying", zap.Error(err), zap.Duration("backoff", next))
	}

	operation := func() (struct{}, error) {
		err := p.Market.Refresh(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) && !fetchErr.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(p.MaxTries),
		backoff.WithNotify(notify))
	return err
}
