package teams

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/target"

	"github.com/dknys/teams_agent/internal/locate"
	"github.com/dknys/teams_agent/internal/poll"
	"github.com/dknys/teams_agent/internal/session"
)

const (
	loginFormWait     = 15 * time.Second
	loginStepWait     = 30 * time.Second
	staySignedInWait  = 10 * time.Second
	loginPollInterval = time.Second
)

// Client drives the Teams web client through a browser session: team
// listing and selection, optional sign-in, and the two join watchers.
type Client struct {
	sess *session.Client
}

func NewClient(sess *session.Client) *Client {
	return &Client{sess: sess}
}

// ListTeams reads the team display names off the active surface, in DOM
// order, deduplicated by normalized name.
func (c *Client) ListTeams(ctx context.Context) ([]string, error) {
	surf, err := c.sess.ActiveSurface()
	if err != nil {
		return nil, err
	}
	var out struct {
		Names []string `json:"names"`
	}
	if err := surf.Eval(ctx, jsListTeamNames(), &out); err != nil {
		return nil, err
	}
	return Dedupe(out.Names), nil
}

// SelectTeam matches query against the listed teams and clicks the
// winning entry. Returns the matched display name.
func (c *Client) SelectTeam(ctx context.Context, query string, exact bool) (string, error) {
	names, err := c.ListTeams(ctx)
	if err != nil {
		return "", err
	}
	name, ok := MatchName(names, query, exact)
	if !ok {
		return "", session.NewError(session.CodeTeamNotFound,
			fmt.Sprintf("no team matches %q among %d listed", query, len(names)), nil)
	}
	surf, err := c.sess.ActiveSurface()
	if err != nil {
		return "", err
	}
	var out struct {
		Clicked bool `json:"clicked"`
	}
	if err := surf.Eval(ctx, jsClickTeamByName(name), &out); err != nil {
		return "", err
	}
	if !out.Clicked {
		return "", session.NewError(session.CodeTeamNotFound,
			fmt.Sprintf("team %q listed but not clickable", name), nil)
	}
	slog.Info("team selected", "team", name)
	return name, nil
}

// AutoLogin fills the Microsoft sign-in form if it is showing. An
// already signed-in profile is the common case: when no email field
// appears within the wait window, the session is assumed valid and no
// error is returned.
func (c *Client) AutoLogin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	surf, err := c.sess.ActiveSurface()
	if err != nil {
		return err
	}
	if !c.waitFor(ctx, surf, LoginEmailSelectors, loginFormWait) {
		slog.Debug("no sign-in form, assuming existing session")
		return nil
	}
	slog.Info("sign-in form detected, attempting login", "email", email)

	if err := c.fill(ctx, surf, LoginEmailSelectors, email); err != nil {
		return session.NewError(session.CodeLoginFailure, "filling email", err)
	}
	if err := c.submit(ctx, surf); err != nil {
		return session.NewError(session.CodeLoginFailure, "submitting email", err)
	}
	if !c.waitFor(ctx, surf, LoginPasswordSelectors, loginStepWait) {
		return session.NewError(session.CodeLoginFailure, "password field never appeared", nil)
	}
	if err := c.fill(ctx, surf, LoginPasswordSelectors, password); err != nil {
		return session.NewError(session.CodeLoginFailure, "filling password", err)
	}
	if err := c.submit(ctx, surf); err != nil {
		return session.NewError(session.CodeLoginFailure, "submitting password", err)
	}

	// "Stay signed in?" keeps the persistent profile warm. Best effort:
	// the prompt does not always show.
	if c.waitFor(ctx, surf, StaySignedInSelectors, staySignedInWait) {
		if _, err := locate.FindAndClick(ctx, surf, StaySignedInSelectors); err != nil {
			slog.Debug("stay-signed-in click failed", "err", err)
		}
	}
	slog.Info("login sequence completed")
	return nil
}

// WatchJoin polls the active surface for a Join button, clicking it as
// soon as one is actionable. A false result means the window expired
// without a meeting to join.
func (c *Client) WatchJoin(ctx context.Context, interval, timeout time.Duration, reload bool) (bool, error) {
	surf, err := c.sess.ActiveSurface()
	if err != nil {
		return false, err
	}
	p := poll.New(poll.Config{Interval: interval, Timeout: timeout, ReloadBeforeCheck: reload})
	return p.Run(ctx, func(ctx context.Context) (bool, error) {
		return locate.FindAndClick(ctx, surf, JoinButtonSelectors)
	}, surf.Reload)
}

// WatchPrejoin scans every session surface for the pre-join screen and
// confirms it, muting devices first. The created channel feeds
// new-window notifications into the scan cadence.
func (c *Client) WatchPrejoin(ctx context.Context, timeout, settle time.Duration, created <-chan poll.SurfaceID) (bool, error) {
	p := poll.NewMulti(poll.MultiConfig{Timeout: timeout, SettleDelay: settle})

	list := func(ctx context.Context) []poll.SurfaceID {
		if err := c.sess.SyncSurfaces(ctx); err != nil {
			slog.Warn("surface sync failed", "err", err)
		}
		surfs := c.sess.Surfaces()
		ids := make([]poll.SurfaceID, 0, len(surfs))
		for _, s := range surfs {
			ids = append(ids, poll.SurfaceID(s.ID))
		}
		return ids
	}

	check := func(ctx context.Context, id poll.SurfaceID) (bool, error) {
		surf, ok := c.sess.SurfaceByID(target.ID(id))
		if !ok {
			return false, nil
		}
		_, found, err := locate.Find(ctx, surf, JoinNowSelectors)
		if err != nil || !found {
			return false, err
		}
		c.prejoinDevices(ctx, surf)
		return locate.FindAndClick(ctx, surf, JoinNowSelectors)
	}

	return p.Run(ctx, list, check, created)
}

// prejoinDevices turns the mic and camera off before joining. Best
// effort: a toggle that is already off has no matching "turn off"
// control and is skipped.
func (c *Client) prejoinDevices(ctx context.Context, surf *session.Surface) {
	for _, set := range []locate.SelectorSet{MuteMicSelectors, CameraOffSelectors} {
		if _, err := locate.FindAndClick(ctx, surf, set); err != nil {
			slog.Debug("device toggle failed", "err", err)
		}
	}
}

// waitFor polls until any selector of the set matches or the window
// expires. Used for login steps where the page transitions between
// forms.
func (c *Client) waitFor(ctx context.Context, surf *session.Surface, set locate.SelectorSet, wait time.Duration) bool {
	p := poll.New(poll.Config{Interval: loginPollInterval, Timeout: wait})
	found, err := p.Run(ctx, func(ctx context.Context) (bool, error) {
		_, ok, err := locate.Find(ctx, surf, set)
		return ok, err
	}, nil)
	if err != nil {
		return false
	}
	return found
}

func (c *Client) fill(ctx context.Context, surf *session.Surface, set locate.SelectorSet, value string) error {
	var out struct {
		Filled bool `json:"filled"`
	}
	if err := surf.Eval(ctx, jsFillInput(set, value), &out); err != nil {
		return err
	}
	if !out.Filled {
		return fmt.Errorf("no matching input on page")
	}
	return nil
}

func (c *Client) submit(ctx context.Context, surf *session.Surface) error {
	clicked, err := locate.FindAndClick(ctx, surf, LoginSubmitSelectors)
	if err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no submit control on page")
	}
	return nil
}
