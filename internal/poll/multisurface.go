package poll

import (
	"context"
	"log/slog"
	"time"
)

// SurfaceID identifies one browsing context (tab/window) of the session.
type SurfaceID string

// ListFunc returns the currently known surfaces in creation order.
type ListFunc func(ctx context.Context) []SurfaceID

// SurfaceCheckFunc performs one locate-and-click pass on one surface.
type SurfaceCheckFunc func(ctx context.Context, id SurfaceID) (bool, error)

// MultiConfig bounds a multi-surface polling run. There is no interval:
// the effective cadence is the bounded wait for a new-surface event.
type MultiConfig struct {
	// Timeout is the total wall-clock budget. Zero means a single scan.
	Timeout time.Duration
	// NewSurfaceWait bounds the per-cycle wait for a new surface.
	NewSurfaceWait time.Duration
	// SettleDelay gives a just-created surface time to finish its
	// initial navigation before it is scanned.
	SettleDelay time.Duration
}

// MultiPoller applies a check to every known surface each cycle, racing a
// bounded wait for new-surface notifications between scans. A meeting
// opened in a new window is picked up on the next scan.
type MultiPoller struct {
	cfg MultiConfig
}

// NewMulti builds a MultiPoller with defaults for unset durations.
func NewMulti(cfg MultiConfig) *MultiPoller {
	if cfg.NewSurfaceWait <= 0 {
		cfg.NewSurfaceWait = time.Second
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return &MultiPoller{cfg: cfg}
}

// Run scans all surfaces, then waits up to NewSurfaceWait for a
// new-surface notification, then scans again, until a check succeeds or
// the deadline expires. Whether or not a notification arrives, every
// known surface is re-scanned each cycle. Expiry is a normal negative
// outcome.
func (p *MultiPoller) Run(ctx context.Context, list ListFunc, check SurfaceCheckFunc, created <-chan SurfaceID) (bool, error) {
	start := time.Now()
	deadline := start.Add(p.cfg.Timeout)

	for cycle := 0; ; cycle++ {
		ids := list(ctx)
		for _, id := range ids {
			found, err := check(ctx, id)
			if err != nil {
				slog.Warn("surface check failed", "surface", id, "error", err)
				continue
			}
			if found {
				slog.Info("target found", "surface", id, "cycle", cycle,
					"elapsed", time.Since(start).Round(time.Millisecond))
				return true, nil
			}
		}

		if !time.Now().Before(deadline) {
			slog.Info("multi-surface poll window expired", "cycles", cycle+1,
				"surfaces", len(ids), "elapsed", time.Since(start).Round(time.Millisecond))
			return false, nil
		}

		if err := p.awaitNewSurface(ctx, created); err != nil {
			return false, err
		}
	}
}

// awaitNewSurface blocks up to NewSurfaceWait for a surface-created
// notification. When one arrives the new surface gets a settle delay for
// its initial navigation; either way the caller proceeds to re-scan.
func (p *MultiPoller) awaitNewSurface(ctx context.Context, created <-chan SurfaceID) error {
	timer := time.NewTimer(p.cfg.NewSurfaceWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case id, ok := <-created:
		if !ok {
			// Notification source gone; fall back to plain cadence.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
			return nil
		}
		slog.Info("new surface created", "surface", id)
		if p.cfg.SettleDelay > 0 {
			settle := time.NewTimer(p.cfg.SettleDelay)
			defer settle.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-settle.C:
			}
		}
	case <-timer.C:
	}
	return nil
}
