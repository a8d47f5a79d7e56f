// Package session owns the chromedp connection to the one persistent
// browser session and tracks its open surfaces (tabs/windows) in
// creation order.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/cdproto/target"
)

// Surface is one browsing context of the session. All surfaces share the
// single persistent profile; none are ever closed by the agent.
type Surface struct {
	ID    target.ID
	URL   string
	Title string

	client *Client
	ctx    context.Context
	cancel context.CancelFunc
}

// Client manages the CDP connection and the surface registry.
type Client struct {
	cdpURL      string
	urlFilter   string
	evalTimeout time.Duration

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	surfaces    map[target.ID]*Surface
	order       []target.ID // creation order
}

type evalEnvelope struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// NewClient creates a session client for the given CDP endpoint. The URL
// filter restricts which tabs count as application surfaces; empty
// matches everything.
func NewClient(cdpURL, urlFilter string, evalTimeout time.Duration) *Client {
	if evalTimeout <= 0 {
		evalTimeout = 5 * time.Second
	}
	return &Client{
		cdpURL:      cdpURL,
		urlFilter:   strings.ToLower(strings.TrimSpace(urlFilter)),
		evalTimeout: evalTimeout,
		surfaces:    make(map[target.ID]*Surface),
	}
}

// Connect dials the browser and performs the initial surface sync.
func (c *Client) Connect(ctx context.Context) error {
	if c.cdpURL == "" {
		return NewError(CodeCDPUnavailable, "missing CDP URL", nil)
	}
	slog.Info("session connect start", "cdp_url", c.cdpURL)

	c.mu.Lock()
	c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), c.cdpURL)
	c.mu.Unlock()

	probeCtx, probeCancel := chromedp.NewContext(c.allocCtx)
	defer probeCancel()
	if err := chromedp.Run(probeCtx); err != nil {
		return NewError(CodeCDPUnavailable, "connect to browser failed", err)
	}

	if err := c.SyncSurfaces(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	count := len(c.order)
	c.mu.Unlock()
	slog.Info("session connect ok", "cdp_url", c.cdpURL, "surfaces", count)
	return nil
}

// Close releases all tab contexts and the allocator. The browser and its
// tabs stay open; only the agent's attachment goes away.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.surfaces {
		s.cancel()
	}
	c.surfaces = make(map[target.ID]*Surface)
	c.order = nil
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
	}
	slog.Info("session closed")
	return nil
}

// SyncSurfaces reconciles the registry with the browser's current page
// targets. New targets are appended, preserving creation order; targets
// that disappeared are dropped.
func (c *Client) SyncSurfaces(ctx context.Context) error {
	c.mu.Lock()
	allocCtx := c.allocCtx
	c.mu.Unlock()
	if allocCtx == nil {
		return NewError(CodeCDPUnavailable, "session not connected", nil)
	}

	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	defer probeCancel()

	targets, err := chromedp.Targets(probeCtx)
	if err != nil {
		return NewError(CodeCDPUnavailable, "failed to list targets", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[target.ID]bool, len(targets))
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if c.urlFilter != "" && !strings.Contains(strings.ToLower(t.URL), c.urlFilter) {
			continue
		}
		seen[t.TargetID] = true
		if s, ok := c.surfaces[t.TargetID]; ok {
			s.URL = t.URL
			s.Title = t.Title
			continue
		}
		tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithTargetID(t.TargetID))
		c.surfaces[t.TargetID] = &Surface{
			ID:     t.TargetID,
			URL:    t.URL,
			Title:  t.Title,
			client: c,
			ctx:    tabCtx,
			cancel: tabCancel,
		}
		c.order = append(c.order, t.TargetID)
		slog.Debug("surface registered", "target_id", t.TargetID, "url", truncateURL(t.URL))
	}

	kept := c.order[:0]
	for _, id := range c.order {
		if seen[id] {
			kept = append(kept, id)
			continue
		}
		if s, ok := c.surfaces[id]; ok {
			s.cancel()
			delete(c.surfaces, id)
		}
		slog.Debug("surface dropped", "target_id", id)
	}
	c.order = kept
	return nil
}

// Connected reports whether the allocator is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocCtx != nil
}

// Surfaces returns all known surfaces in creation order.
func (c *Client) Surfaces() []*Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Surface, 0, len(c.order))
	for _, id := range c.order {
		if s, ok := c.surfaces[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// SurfaceByID looks up one surface.
func (c *Client) SurfaceByID(id target.ID) (*Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.surfaces[id]
	return s, ok
}

// ActiveSurface returns the first surface, the session's primary tab.
func (c *Client) ActiveSurface() (*Surface, error) {
	surfaces := c.Surfaces()
	if len(surfaces) == 0 {
		return nil, NewError(CodeSurfaceNotFound, "no application surfaces found", nil)
	}
	return surfaces[0], nil
}

// Navigate loads a URL on the surface and waits for minimal DOM
// readiness.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := s.bounded(ctx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return NewError(CodeCDPUnavailable, "navigate failed", err)
	}
	s.URL = url
	return nil
}

// Reload reloads the surface and waits for minimal DOM readiness.
func (s *Surface) Reload(ctx context.Context) error {
	reloadCtx, cancel := s.bounded(ctx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(reloadCtx, chromedp.Reload(), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return NewError(CodeCDPUnavailable, "reload failed", err)
	}
	return nil
}

// Eval runs an envelope-returning script on the surface and decodes its
// data into out. Page-side failures come back as EVAL_FAILURE.
func (s *Surface) Eval(ctx context.Context, js string, out any) error {
	evalCtx, cancel := s.bounded(ctx, s.client.evalTimeout)
	defer cancel()

	var env evalEnvelope
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(js, &env)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
			return NewError(CodeEvalTimeout, "evaluation timed out", err)
		}
		return NewError(CodeEvalFailure, "evaluation failed", err)
	}
	if !env.OK {
		return NewError(CodeEvalFailure, env.ErrorMessage, nil)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return NewError(CodeEvalFailure, "invalid evaluation data", err)
	}
	return nil
}

// bounded derives a context that honors both the caller's deadline and
// the surface's own lifetime.
func (s *Surface) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	merged, cancelMerge := mergeContexts(s.ctx, ctx)
	boundedCtx, cancelTimeout := context.WithTimeout(merged, timeout)
	return boundedCtx, func() {
		cancelTimeout()
		cancelMerge()
	}
}

// mergeContexts returns the tab context, canceled early when the caller's
// context ends. chromedp actions must run on the tab context; the caller
// context only contributes cancellation.
func mergeContexts(tab, caller context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(tab)
	stop := context.AfterFunc(caller, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
