package cli

import (
	"testing"

	"github.com/dknys/teams_agent/internal/config"
)

func TestFlagOverridesEnvValues(t *testing.T) {
	cfg := &config.Config{TeamName: "from-env", WatchIntervalSec: 30, WatchMinutes: 10, PrejoinTimeoutSec: 120}
	cmd := NewRootCommand(cfg)
	if err := cmd.Flags().Parse([]string{"--team", "standup", "--interval-sec", "5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	applyFlagOverrides(cmd, cfg)

	if cfg.TeamName != "standup" {
		t.Fatalf("TeamName = %q, want %q", cfg.TeamName, "standup")
	}
	if cfg.WatchIntervalSec != 5 {
		t.Fatalf("WatchIntervalSec = %d, want 5", cfg.WatchIntervalSec)
	}
}

func TestEnvValueKeptWhenFlagAbsent(t *testing.T) {
	cfg := &config.Config{TeamName: "from-env", WatchJoin: true, WatchIntervalSec: 30, WatchMinutes: 10, PrejoinTimeoutSec: 120}
	cmd := NewRootCommand(cfg)
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	applyFlagOverrides(cmd, cfg)

	if cfg.TeamName != "from-env" {
		t.Fatalf("TeamName = %q, want env value preserved", cfg.TeamName)
	}
	if !cfg.WatchJoin {
		t.Fatal("WatchJoin = false, want env value preserved")
	}
	if cfg.WatchIntervalSec != 30 {
		t.Fatalf("WatchIntervalSec = %d, want 30", cfg.WatchIntervalSec)
	}
}

func TestOverridesClampedLikeEnv(t *testing.T) {
	cfg := &config.Config{WatchIntervalSec: 30, WatchMinutes: 10, PrejoinTimeoutSec: 120}
	cmd := NewRootCommand(cfg)
	if err := cmd.Flags().Parse([]string{"--interval-sec", "0", "--watch-minutes", "-3"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	applyFlagOverrides(cmd, cfg)

	if cfg.WatchIntervalSec != 1 {
		t.Fatalf("WatchIntervalSec = %d, want clamp to 1", cfg.WatchIntervalSec)
	}
	if cfg.WatchMinutes != 0 {
		t.Fatalf("WatchMinutes = %d, want clamp to 0", cfg.WatchMinutes)
	}
}

func TestPrejoinAliasFlag(t *testing.T) {
	cfg := &config.Config{WatchIntervalSec: 30, WatchMinutes: 10, PrejoinTimeoutSec: 120}
	cmd := NewRootCommand(cfg)
	if err := cmd.Flags().Parse([]string{"--prejoin"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	applyFlagOverrides(cmd, cfg)

	if !cfg.WatchPrejoin {
		t.Fatal("WatchPrejoin = false, want true via --prejoin alias")
	}
}

func TestBindCandidates(t *testing.T) {
	got := bindCandidates("127.0.0.1:8700")
	want := []string{"127.0.0.1:8701", "127.0.0.1:8702", "127.0.0.1:8703"}
	if len(got) != len(want) {
		t.Fatalf("bindCandidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bindCandidates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBindCandidatesBadAddr(t *testing.T) {
	if got := bindCandidates("not-an-addr"); got != nil {
		t.Fatalf("bindCandidates() = %v, want nil", got)
	}
}
