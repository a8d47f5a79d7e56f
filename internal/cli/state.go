package cli

import (
	"context"
	"sync"
	"time"

	"github.com/dknys/teams_agent/internal/api"
	"github.com/dknys/teams_agent/internal/config"
	"github.com/dknys/teams_agent/internal/session"
	"github.com/dknys/teams_agent/internal/teams"
)

// agentState is the api.Service implementation: a snapshot of what the
// agent is doing, safe for concurrent reads from API handlers.
type agentState struct {
	cfg   *config.Config
	sess  *session.Client
	agent *teams.Client
	start time.Time

	mu         sync.Mutex
	teamName   string
	watchState string
}

func newAgentState(cfg *config.Config, sess *session.Client, agent *teams.Client) *agentState {
	return &agentState{
		cfg:        cfg,
		sess:       sess,
		agent:      agent,
		start:      time.Now(),
		watchState: "idle",
	}
}

func (s *agentState) setTeam(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamName = name
}

func (s *agentState) team() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamName
}

func (s *agentState) setWatchState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchState = state
}

func (s *agentState) Status(ctx context.Context) (api.Status, error) {
	s.mu.Lock()
	team := s.teamName
	watch := s.watchState
	s.mu.Unlock()

	return api.Status{
		Connected:    s.sess.Connected(),
		Surfaces:     len(s.sess.Surfaces()),
		Team:         team,
		WatchState:   watch,
		ProfileDir:   s.cfg.ProfileDir,
		UptimeSecond: int64(time.Since(s.start).Seconds()),
	}, nil
}

func (s *agentState) ListTeams(ctx context.Context) ([]string, error) {
	return s.agent.ListTeams(ctx)
}
