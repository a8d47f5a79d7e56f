// Package cli wires flags, environment and the agent run sequence into a
// cobra root command. Flags win over environment variables: an env
// mirror is consulted only when its flag was not given on the command
// line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dknys/teams_agent/internal/api"
	"github.com/dknys/teams_agent/internal/browser"
	"github.com/dknys/teams_agent/internal/config"
	"github.com/dknys/teams_agent/internal/netutil"
	"github.com/dknys/teams_agent/internal/notify"
	"github.com/dknys/teams_agent/internal/poll"
	"github.com/dknys/teams_agent/internal/session"
	"github.com/dknys/teams_agent/internal/teams"
	"github.com/dknys/teams_agent/internal/watcher"
)

const (
	// surfaceFilter keeps the session registry to Teams and Microsoft
	// login tabs; sign-in redirects through login.microsoftonline.com.
	surfaceFilter = "microsoft"

	evalTimeout        = 5 * time.Second
	prejoinSettleDelay = 1500 * time.Millisecond
)

type options struct {
	reset     bool
	listTeams bool
	exact     bool
}

// NewRootCommand builds the teams_agent command against a loaded config.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "teams_agent",
		Short:         "Join Microsoft Teams meetings from a persistent browser session",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlagOverrides(cmd, cfg)
			return run(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.reset, "reset", false, "delete the persisted session profile before launch")
	f.BoolVar(&opts.listTeams, "list-teams", false, "print all discoverable team display names and exit")
	f.BoolVar(&opts.listTeams, "list", false, "alias for --list-teams")
	f.BoolVar(&opts.exact, "exact", false, "require exact (not substring) match for --team")
	f.String("team", "", "open the first team whose name matches the query")
	f.Bool("watch-join", false, "poll for a meeting Join button and click it")
	f.Int("interval-sec", 30, "poll interval in seconds for --watch-join")
	f.Int("watch-minutes", 10, "total timeout in minutes for --watch-join")
	f.Bool("reload-join", false, "reload the page before each join poll cycle")
	f.Bool("watch-prejoin", false, "watch for the pre-join screen and confirm it")
	f.Bool("prejoin", false, "alias for --watch-prejoin")
	f.Int("prejoin-timeout-sec", 120, "timeout in seconds for the pre-join watcher")
	f.String("api-addr", "", "bind address for the local status API (disabled when empty)")

	return cmd
}

// applyFlagOverrides copies explicitly set flags over the env-derived
// config. Unset flags leave the env values in place.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("team") {
		cfg.TeamName, _ = f.GetString("team")
	}
	if f.Changed("watch-join") {
		cfg.WatchJoin, _ = f.GetBool("watch-join")
	}
	if f.Changed("interval-sec") {
		cfg.WatchIntervalSec, _ = f.GetInt("interval-sec")
	}
	if f.Changed("watch-minutes") {
		cfg.WatchMinutes, _ = f.GetInt("watch-minutes")
	}
	if f.Changed("reload-join") {
		cfg.WatchReload, _ = f.GetBool("reload-join")
	}
	if f.Changed("watch-prejoin") {
		cfg.WatchPrejoin, _ = f.GetBool("watch-prejoin")
	}
	if f.Changed("prejoin") {
		cfg.WatchPrejoin, _ = f.GetBool("prejoin")
	}
	if f.Changed("prejoin-timeout-sec") {
		cfg.PrejoinTimeoutSec, _ = f.GetInt("prejoin-timeout-sec")
	}
	if f.Changed("api-addr") {
		cfg.APIAddr, _ = f.GetString("api-addr")
	}
	if cfg.WatchIntervalSec < 1 {
		cfg.WatchIntervalSec = 1
	}
	if cfg.WatchMinutes < 0 {
		cfg.WatchMinutes = 0
	}
	if cfg.PrejoinTimeoutSec < 0 {
		cfg.PrejoinTimeoutSec = 0
	}
}

func run(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.reset {
		if err := browser.ResetProfile(cfg.ProfileDir); err != nil {
			return err
		}
	}

	launcher := browser.NewLauncher(browser.Config{
		CDPAddress: cfg.CDPAddress,
		CDPPort:    cfg.CDPPort,
		StartURL:   cfg.TeamsURL,
		ProfileDir: cfg.ProfileDir,
	})
	if err := launcher.Launch(ctx); err != nil {
		return err
	}
	// The browser outlives the agent: the window stays open for the
	// user after we exit.
	defer launcher.Release()

	sess := session.NewClient(cfg.CDPURL(), surfaceFilter, evalTimeout)
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	agent := teams.NewClient(sess)
	state := newAgentState(cfg, sess, agent)

	if err := agent.AutoLogin(ctx, cfg.Email, cfg.Password); err != nil {
		slog.Info("auto-login did not complete, window left open for manual sign-in", "reason", err)
	}

	if opts.listTeams {
		names, err := agent.ListTeams(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "could not list teams: %v\n", err)
			return nil
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	}

	if cfg.TeamName != "" {
		team, err := agent.SelectTeam(ctx, cfg.TeamName, opts.exact)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "could not open team %q: %v\n", cfg.TeamName, err)
		} else {
			state.setTeam(team)
		}
	}

	shutdownAPI, err := startAPI(cfg, state)
	if err != nil {
		return err
	}
	defer shutdownAPI()

	joined, err := runWatchers(ctx, cfg, agent, state)
	if err != nil {
		return err
	}

	if !cfg.WatchJoin && !cfg.WatchPrejoin {
		// Nothing left to do, but the session belongs to the user now.
		// Stay alive until interrupted so the window remains open.
		slog.Info("run complete, waiting for interrupt", "profile", cfg.ProfileDir)
		<-ctx.Done()
		return nil
	}

	if joined {
		state.setWatchState("joined")
		notifyEvent(cfg, notify.JoinedMessage(state.team()))
		slog.Info("meeting joined, waiting for interrupt")
		<-ctx.Done()
		return nil
	}

	state.setWatchState("expired")
	window := (time.Duration(cfg.WatchMinutes) * time.Minute).String()
	if !cfg.WatchJoin {
		window = (time.Duration(cfg.PrejoinTimeoutSec) * time.Second).String()
	}
	notifyEvent(cfg, notify.ExpiredMessage(window))
	slog.Info("watch window expired without a meeting to join", "window", window)
	return nil
}

// runWatchers executes the join and pre-join watch phases that were
// requested. The pre-join phase runs after a successful join click, or
// on its own when only --watch-prejoin was given.
func runWatchers(ctx context.Context, cfg *config.Config, agent *teams.Client, state *agentState) (bool, error) {
	joined := false

	if cfg.WatchJoin {
		state.setWatchState("watching-join")
		interval := time.Duration(cfg.WatchIntervalSec) * time.Second
		window := time.Duration(cfg.WatchMinutes) * time.Minute
		slog.Info("watching for join button", "interval", interval, "window", window, "reload", cfg.WatchReload)

		found, err := agent.WatchJoin(ctx, interval, window, cfg.WatchReload)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}
		joined = true
		slog.Info("join button clicked")
	}

	if cfg.WatchPrejoin || joined {
		state.setWatchState("watching-prejoin")
		timeout := time.Duration(cfg.PrejoinTimeoutSec) * time.Second
		slog.Info("watching for pre-join screen", "window", timeout)

		confirmed, err := watchPrejoin(ctx, cfg, agent, timeout)
		if err != nil {
			return false, err
		}
		if confirmed {
			slog.Info("pre-join confirmed")
			return true, nil
		}
		if !joined {
			return false, nil
		}
	}

	return joined, nil
}

// watchPrejoin runs the multi-surface poller with new-window
// notifications feeding its scan cadence. A watcher that fails to start
// degrades to plain time-based scanning.
func watchPrejoin(ctx context.Context, cfg *config.Config, agent *teams.Client, timeout time.Duration) (bool, error) {
	w := watcher.New(cfg.CDPURL())
	var created chan poll.SurfaceID

	if err := w.Start(ctx); err != nil {
		slog.Warn("new-surface watcher unavailable, scanning on timer only", "error", err)
	} else {
		defer w.Close()
		created = make(chan poll.SurfaceID, 16)
		go func() {
			defer close(created)
			for ev := range w.Events() {
				select {
				case created <- poll.SurfaceID(ev.TargetID):
				default:
				}
			}
		}()
	}

	return agent.WatchPrejoin(ctx, timeout, prejoinSettleDelay, created)
}

// startAPI brings up the optional local status API. The returned
// shutdown func is a no-op when no address is configured.
func startAPI(cfg *config.Config, state *agentState) (func(), error) {
	if cfg.APIAddr == "" {
		return func() {}, nil
	}

	addr, err := netutil.SelectBindAddr(cfg.APIAddr, bindCandidates(cfg.APIAddr), true)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Addr: addr, Handler: api.NewServer(state)}
	go func() {
		slog.Info("status api listening", "addr", addr, "docs", "http://"+addr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("status api failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("status api shutdown failed", "error", err)
		}
	}, nil
}

// bindCandidates derives fallback addresses on the next few ports after
// the preferred one.
func bindCandidates(preferred string) []string {
	host, portStr, err := net.SplitHostPort(preferred)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	candidates := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		candidates = append(candidates, net.JoinHostPort(host, strconv.Itoa(port+i)))
	}
	return candidates
}

func notifyEvent(cfg *config.Config, message string) {
	if cfg.NotifyEndpoint == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := notify.Send(ctx, nil, cfg.NotifyEndpoint, message); err != nil {
		slog.Warn("notification failed", "endpoint", cfg.NotifyEndpoint, "error", err)
	}
}

// Execute runs the root command and maps any escaped error to exit
// code 1.
func Execute(cfg *config.Config) {
	cmd := NewRootCommand(cfg)
	if err := cmd.Execute(); err != nil {
		slog.Error("run failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
