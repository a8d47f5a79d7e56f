package teams

import (
	"strings"
	"testing"

	"github.com/dknys/teams_agent/internal/locate"
)

func TestCSSQueriesRendersEachKind(t *testing.T) {
	set := locate.SelectorSet{
		locate.TestID("team-name-text"),
		locate.LabelContains("Join now"),
		locate.CSS("button.primary"),
	}
	got := cssQueries(set)
	for _, want := range []string{
		`[data-tid=\"team-name-text\"]`,
		`[aria-label*=\"Join now\"]`,
		`button.primary`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("cssQueries(%v) = %s, missing %s", set, got, want)
		}
	}
}

func TestCSSQueriesSkipsTextSelectors(t *testing.T) {
	set := locate.SelectorSet{
		locate.TextEquals("Join"),
		locate.CSS("button"),
	}
	got := cssQueries(set)
	if strings.Contains(got, "Join") {
		t.Errorf("cssQueries(%v) = %s, text selector should be skipped", set, got)
	}
	if got != `["button"]` {
		t.Errorf("cssQueries(%v) = %s, want [\"button\"]", set, got)
	}
}

func TestFillInputEscapesValue(t *testing.T) {
	js := jsFillInput(LoginEmailSelectors, `bot"@example.com`)
	if !strings.Contains(js, `"bot\"@example.com"`) {
		t.Errorf("jsFillInput did not JSON-escape the value: %s", js)
	}
	if !strings.Contains(js, "dispatchEvent(new Event('input'") {
		t.Errorf("jsFillInput missing input event dispatch: %s", js)
	}
}

func TestClickTeamEmbedsNormalizedTarget(t *testing.T) {
	js := jsClickTeamByName("Команда A")
	if !strings.Contains(js, `"Команда A"`) {
		t.Errorf("jsClickTeamByName missing team name: %s", js)
	}
	if !strings.Contains(js, "normalize('NFKC')") {
		t.Errorf("jsClickTeamByName missing NFKC normalization: %s", js)
	}
}
