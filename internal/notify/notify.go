// Package notify posts plain-text agent events (meeting joined, watch
// expired) to an NTFY-style endpoint.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// JoinedMessage describes a successful meeting join for the endpoint.
func JoinedMessage(team string) string {
	if team == "" {
		return "teams agent joined a meeting"
	}
	return fmt.Sprintf("teams agent joined a meeting in team %q", team)
}

// ExpiredMessage describes a watch window that closed without a meeting.
func ExpiredMessage(window string) string {
	return fmt.Sprintf("teams agent watch expired after %s without a meeting to join", window)
}

// Send posts a message to the endpoint with HTTP POST. An empty endpoint
// is an error; callers that treat notification as optional should skip
// the call instead.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	if endpoint == "" {
		return fmt.Errorf("notify: endpoint not configured")
	}
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
