package locate

import (
	"context"
	"log/slog"
	"time"
)

// Evaluator runs a script in one page surface and decodes the envelope
// data into out. Implemented by the session layer; faked in tests.
type Evaluator interface {
	Eval(ctx context.Context, js string, out any) error
}

// Match reports which selector of a set matched and how many elements it
// currently matches.
type Match struct {
	Selector Selector
	Count    int
}

// clickRegisterWait bounds a single click dispatch. Elements that are
// mid-animation or briefly obstructed get this long to accept the click.
const clickRegisterWait = 5 * time.Second

// Find tries each selector in order and returns the first one that
// matches at least one element. Selectors after the first match are not
// consulted. No match across the whole set is a negative result, not an
// error.
func Find(ctx context.Context, ev Evaluator, set SelectorSet) (Match, bool, error) {
	for _, sel := range set {
		var out struct {
			Count int `json:"count"`
		}
		if err := ev.Eval(ctx, jsCount(sel), &out); err != nil {
			return Match{}, false, err
		}
		if out.Count > 0 {
			slog.Debug("selector matched", "selector", sel.String(), "count", out.Count)
			return Match{Selector: sel, Count: out.Count}, true, nil
		}
	}
	return Match{}, false, nil
}

// ClickFirstActionable clicks the first visible and enabled candidate of
// a match. Candidates that fail the visibility probe or the click itself
// are skipped; when nothing reports visible the very first candidate is
// clicked unconditionally, since some frameworks misreport visibility.
// Returns true after exactly one successful click.
func ClickFirstActionable(ctx context.Context, ev Evaluator, m Match) bool {
	if m.Count == 0 {
		return false
	}

	for i := 0; i < m.Count; i++ {
		var probe struct {
			Exists  bool `json:"exists"`
			Visible bool `json:"visible"`
		}
		if err := ev.Eval(ctx, jsProbe(m.Selector, i), &probe); err != nil {
			slog.Debug("candidate probe failed", "selector", m.Selector.String(), "index", i, "error", err)
			continue
		}
		if !probe.Exists || !probe.Visible {
			continue
		}
		if clickCandidate(ctx, ev, m.Selector, i, false) {
			return true
		}
	}

	// Last resort for frameworks that misreport visibility.
	slog.Debug("no visible candidate, force-clicking first match", "selector", m.Selector.String())
	return clickCandidate(ctx, ev, m.Selector, 0, true)
}

// FindAndClick combines Find and ClickFirstActionable for one poll cycle.
func FindAndClick(ctx context.Context, ev Evaluator, set SelectorSet) (bool, error) {
	m, found, err := Find(ctx, ev, set)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return ClickFirstActionable(ctx, ev, m), nil
}

func clickCandidate(ctx context.Context, ev Evaluator, sel Selector, i int, force bool) bool {
	clickCtx, cancel := context.WithTimeout(ctx, clickRegisterWait)
	defer cancel()

	var out struct {
		Clicked bool `json:"clicked"`
	}
	if err := ev.Eval(clickCtx, jsClick(sel, i, force), &out); err != nil {
		// Transient UI race: the element went stale or became covered
		// between probe and click. Not fatal, try the next candidate.
		slog.Debug("click dispatch failed", "selector", sel.String(), "index", i, "error", err)
		return false
	}
	if out.Clicked {
		slog.Info("clicked element", "selector", sel.String(), "index", i, "forced", force)
	}
	return out.Clicked
}
