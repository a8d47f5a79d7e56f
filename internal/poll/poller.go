// Package poll implements bounded polling for transient UI elements: a
// single-surface poller with a fixed interval and optional reload, and a
// multi-surface variant that fans out over every open tab of a session.
package poll

import (
	"context"
	"log/slog"
	"time"
)

// CheckFunc performs one locate-and-click pass. A false result means the
// target is not currently actionable, never an error.
type CheckFunc func(ctx context.Context) (bool, error)

// ReloadFunc reloads the surface before a re-check. Failures are
// swallowed by the poller: a failed reload still leaves some page to try.
type ReloadFunc func(ctx context.Context) error

// Config bounds a polling run.
type Config struct {
	// Interval is the pause between checks. Must be positive.
	Interval time.Duration
	// Timeout is the total wall-clock budget. Zero means exactly one
	// immediate check.
	Timeout time.Duration
	// ReloadBeforeCheck reloads the surface before every re-check.
	ReloadBeforeCheck bool
}

// Poller drives a CheckFunc until it succeeds or the deadline passes.
type Poller struct {
	cfg Config
}

// New validates and builds a Poller. A non-positive interval is clamped
// to one second.
func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return &Poller{cfg: cfg}
}

// Run checks immediately, then once per interval until check succeeds or
// the deadline expires. Expiry is a normal negative outcome, not an
// error; the returned error is reserved for context cancellation.
func (p *Poller) Run(ctx context.Context, check CheckFunc, reload ReloadFunc) (bool, error) {
	start := time.Now()
	deadline := start.Add(p.cfg.Timeout)

	for cycle := 0; ; cycle++ {
		if cycle > 0 && p.cfg.ReloadBeforeCheck && reload != nil {
			if err := reload(ctx); err != nil {
				slog.Warn("reload before check failed, trying current page", "error", err)
			}
		}

		found, err := check(ctx)
		if err != nil {
			slog.Warn("check cycle failed", "cycle", cycle, "error", err)
		}
		if found {
			slog.Info("target found", "cycle", cycle, "elapsed", time.Since(start).Round(time.Millisecond))
			return true, nil
		}

		if !time.Now().Before(deadline) {
			slog.Info("poll window expired", "cycles", cycle+1, "elapsed", time.Since(start).Round(time.Millisecond))
			return false, nil
		}

		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}
