// Package api exposes a small local status API over the live agent: the
// current session state and the team list, with generated OpenAPI docs.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dknys/teams_agent/internal/session"
)

// Status is the agent's externally visible state.
type Status struct {
	Connected    bool   `json:"connected" doc:"Whether the CDP session is established"`
	Surfaces     int    `json:"surfaces" doc:"Open Teams tabs/windows known to the session"`
	Team         string `json:"team,omitempty" doc:"Display name of the selected team, if any"`
	WatchState   string `json:"watch_state" doc:"idle, watching-join, watching-prejoin, joined, or expired"`
	ProfileDir   string `json:"profile_dir" doc:"Persistent browser profile in use"`
	UptimeSecond int64  `json:"uptime_seconds"`
}

// Service is what the API needs from the running agent.
type Service interface {
	Status(ctx context.Context) (Status, error)
	ListTeams(ctx context.Context) ([]string, error)
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Teams Agent Status API", "1.0.0")
	cfg.DocsPath = ""
	humaAPI := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerStatusHandlers(humaAPI, svc)

	return router
}

func registerStatusHandlers(humaAPI huma.API, svc Service) {
	type statusOutput struct {
		Body Status
	}

	type teamsOutput struct {
		Body struct {
			Teams []string `json:"teams"`
		}
	}

	huma.Register(humaAPI, huma.Operation{OperationID: "get-status", Method: http.MethodGet, Path: "/api/v1/status", Summary: "Agent session and watch state", Tags: []string{"Status"}},
		func(ctx context.Context, _ *struct{}) (*statusOutput, error) {
			st, err := svc.Status(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body = st
			return out, nil
		})

	huma.Register(humaAPI, huma.Operation{OperationID: "list-teams", Method: http.MethodGet, Path: "/api/v1/teams", Summary: "Teams visible in the live session", Tags: []string{"Status"}},
		func(ctx context.Context, _ *struct{}) (*teamsOutput, error) {
			teams, err := svc.ListTeams(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &teamsOutput{}
			out.Body.Teams = teams
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *session.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case session.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case session.CodeSurfaceNotFound, session.CodeTeamNotFound:
			return huma.Error404NotFound(coded.Message)
		case session.CodeEvalTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case session.CodeCDPUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
