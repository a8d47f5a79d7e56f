// Package watcher delivers new-surface notifications by listening for
// Target.targetCreated on the browser-level CDP WebSocket. It stays off
// chromedp's session initialisation (SetAutoAttach, auto-discovery of
// service workers) because those destabilise some browser builds; a bare
// discovery subscription is all the poller needs.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Event describes a newly created page surface.
type Event struct {
	TargetID string
	URL      string
}

// Watcher owns one browser-level WebSocket subscription.
type Watcher struct {
	httpBase string

	mu   sync.Mutex
	conn net.Conn
	seq  atomic.Int64

	events chan Event
}

// New creates a watcher for the given CDP HTTP base, e.g.
// "http://127.0.0.1:9222".
func New(httpBase string) *Watcher {
	return &Watcher{
		httpBase: strings.TrimRight(httpBase, "/"),
		events:   make(chan Event, 16),
	}
}

// Events returns the new-surface notification channel. The channel is
// closed when the connection ends.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start dials the browser WebSocket, enables target discovery and begins
// delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	wsURL, err := w.browserWSURL(ctx)
	if err != nil {
		return fmt.Errorf("watcher: browser ws url: %w", err)
	}

	slog.Debug("watcher connecting", "ws_url", wsURL)
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return fmt.Errorf("watcher: dial: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.send("Target.setDiscoverTargets", map[string]any{"discover": true}); err != nil {
		w.Close()
		return fmt.Errorf("watcher: enable discovery: %w", err)
	}

	go w.readLoop()
	slog.Info("surface watcher started")
	return nil
}

// Close tears down the WebSocket; the read loop then closes the events
// channel.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

func (w *Watcher) readLoop() {
	defer close(w.events)
	for {
		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()
		if conn == nil {
			return
		}

		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			slog.Debug("watcher read loop exit", "error", err)
			return
		}

		ev, ok := decodeEvent(data)
		if !ok {
			continue
		}
		select {
		case w.events <- ev:
		default:
			// Poller is mid-scan; it re-lists surfaces every cycle, so a
			// dropped notification only delays pickup by one cycle.
			slog.Debug("watcher event dropped", "target_id", ev.TargetID)
		}
	}
}

// decodeEvent extracts a page-surface creation event, ignoring command
// responses and every other target type (workers, iframes, extensions).
func decodeEvent(data []byte) (Event, bool) {
	var msg struct {
		ID     int64  `json:"id"`
		Method string `json:"method"`
		Params struct {
			TargetInfo struct {
				TargetID string `json:"targetId"`
				Type     string `json:"type"`
				URL      string `json:"url"`
			} `json:"targetInfo"`
		} `json:"params"`
	}
	if json.Unmarshal(data, &msg) != nil {
		return Event{}, false
	}
	if msg.ID > 0 || msg.Method != "Target.targetCreated" {
		return Event{}, false
	}
	if msg.Params.TargetInfo.Type != "page" {
		return Event{}, false
	}
	return Event{
		TargetID: msg.Params.TargetInfo.TargetID,
		URL:      msg.Params.TargetInfo.URL,
	}, true
}

// send fires a CDP command without waiting for its response; responses
// are discarded by decodeEvent.
func (w *Watcher) send(method string, params any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("watcher: not connected")
	}

	req := struct {
		ID     int64  `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params,omitempty"`
	}{ID: w.seq.Add(1), Method: method, Params: params}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return wsutil.WriteClientText(w.conn, data)
}

// browserWSURL fetches the browser-level WebSocket endpoint from
// /json/version.
func (w *Watcher) browserWSURL(ctx context.Context) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, w.httpBase+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("/json/version: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.Unmarshal(body, &version); err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("/json/version: missing webSocketDebuggerUrl")
	}
	return version.WebSocketDebuggerURL, nil
}
