package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sugarWatch/internal/telemetry"
)

// Presenter displays a bot status on the chat platform.
type Presenter interface {
	SetNick(ctx context.Context, nick string) error
	SetPresence(ctx context.Context, text string) error
}

// TickerConfig controls one ticker bot.
type TickerConfig struct {
	Name     string
	Interval time.Duration
	// Presence is shown once at start.
	Presence   string
	MaxRetries int
	RetryDelay time.Duration
}

// Ticker refreshes a bot status on a fixed interval. A failed refresh is
// logged and leaves the displayed status untouched.
type Ticker struct {
	cfg       TickerConfig
	status    StatusFunc
	presenter Presenter
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

func NewTicker(cfg TickerConfig, status StatusFunc, presenter Presenter, m *telemetry.Metrics, logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		cfg:       cfg,
		status:    status,
		presenter: presenter,
		metrics:   m,
		logger:    logger.With(zap.String("bot", cfg.Name)),
	}
}

// Run ticks immediately and then every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context) error {
	if t.cfg.Interval <= 0 {
		return fmt.Errorf("ticker %s: interval must be > 0", t.cfg.Name)
	}

	if t.cfg.Presence != "" {
		if err := t.presenter.SetPresence(ctx, t.cfg.Presence); err != nil {
			t.logger.Warn("set initial presence failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		_ = t.Tick(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick computes the status, retrying with backoff, and displays it.
func (t *Ticker) Tick(ctx context.Context) error {
	var status Status
	retry := backoff{
		maxRetries: t.cfg.MaxRetries,
		baseDelay:  t.cfg.RetryDelay,
		onRetry: func(attempt int, delay time.Duration, err error) {
			t.logger.Warn("status refresh failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		},
	}
	err := retry.run(ctx, func(ctx context.Context) error {
		s, err := t.status(ctx)
		if err != nil {
			return err
		}
		status = s
		return nil
	})
	if err == nil {
		err = t.apply(ctx, status)
	}

	t.metrics.ObserveTick(t.cfg.Name, err)
	if err != nil {
		t.logger.Error("ticker failed", zap.Error(err))
		return err
	}
	t.logger.Debug("status updated",
		zap.String("nick", status.Nick),
		zap.String("presence", status.Presence),
	)
	return nil
}

func (t *Ticker) apply(ctx context.Context, status Status) error {
	if status.Nick != "" {
		if err := t.presenter.SetNick(ctx, status.Nick); err != nil {
			return fmt.Errorf("set nick: %w", err)
		}
	}
	if status.Presence != "" {
		if err := t.presenter.SetPresence(ctx, status.Presence); err != nil {
			return fmt.Errorf("set presence: %w", err)
		}
	}
	return nil
}
