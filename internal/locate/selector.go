package locate

import "encoding/json"

// Kind identifies the mechanism a Selector uses to find elements.
type Kind string

const (
	// KindCSS matches elements by a raw CSS selector.
	KindCSS Kind = "css"
	// KindTestID matches elements by the application's stable test
	// attribute (data-tid).
	KindTestID Kind = "testid"
	// KindLabelContains matches elements whose aria-label contains a
	// substring.
	KindLabelContains Kind = "label"
	// KindTextEquals matches button-like elements whose trimmed visible
	// text equals a value.
	KindTextEquals Kind = "text"
)

// Selector describes one way to identify a target interactive element.
type Selector struct {
	Kind  Kind
	Value string
}

func CSS(v string) Selector           { return Selector{Kind: KindCSS, Value: v} }
func TestID(v string) Selector        { return Selector{Kind: KindTestID, Value: v} }
func LabelContains(v string) Selector { return Selector{Kind: KindLabelContains, Value: v} }
func TextEquals(v string) Selector    { return Selector{Kind: KindTextEquals, Value: v} }

// String renders the selector for logging.
func (s Selector) String() string {
	return string(s.Kind) + ":" + s.Value
}

// SelectorSet is an ordered fallback chain. Earlier entries are tried
// first; the first selector that matches any element wins.
type SelectorSet []Selector

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
