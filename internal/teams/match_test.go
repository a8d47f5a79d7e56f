package teams

import "testing"

func TestMatchNameSubstring(t *testing.T) {
	names := []string{"Команда A", "Команда B12", "team c"}

	got, ok := MatchName(names, "команда", false)
	if !ok {
		t.Fatal("MatchName(команда) = no match; want first match")
	}
	if want := "Команда A"; got != want {
		t.Fatalf("MatchName(команда) = %q; want %q (first in enumeration order)", got, want)
	}
}

func TestMatchNameExact(t *testing.T) {
	names := []string{"Команда A", "Команда B12", "team c"}

	got, ok := MatchName(names, "команда a", true)
	if !ok {
		t.Fatal("MatchName(команда a, exact) = no match; want match")
	}
	if want := "Команда A"; got != want {
		t.Fatalf("MatchName(команда a, exact) = %q; want %q", got, want)
	}

	if _, ok := MatchName(names, "команда", true); ok {
		t.Fatal("MatchName(команда, exact) = match; want no match for prefix")
	}
}

func TestMatchNameNoMatch(t *testing.T) {
	names := []string{"Команда A", "Команда B12", "team c"}
	if _, ok := MatchName(names, "zzz", false); ok {
		t.Fatal("MatchName(zzz) = match; want no match")
	}
}

func TestMatchNameEmptyQuery(t *testing.T) {
	if _, ok := MatchName([]string{"team"}, "   ", false); ok {
		t.Fatal("MatchName(blank) = match; want no match")
	}
}

func TestMatchNameCaseAndSpacing(t *testing.T) {
	names := []string{"  Engineering  "}
	got, ok := MatchName(names, "ENGINEERING", true)
	if !ok || got != "  Engineering  " {
		t.Fatalf("MatchName(ENGINEERING, exact) = %q, %v; want original name, true", got, ok)
	}
}

func TestDedupePreservesFirstSeenOrder(t *testing.T) {
	in := []string{"Alpha", "beta", "ALPHA", "Gamma", "Beta", ""}
	got := Dedupe(in)
	want := []string{"Alpha", "beta", "Gamma"}
	if len(got) != len(want) {
		t.Fatalf("Dedupe() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Dedupe() = %v; want %v", got, want)
		}
	}
}
