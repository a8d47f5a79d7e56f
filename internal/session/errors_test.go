package session

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodedErrorUnwrap(t *testing.T) {
	cause := errors.New("websocket: close 1006")
	err := NewError(CodeCDPUnavailable, "connect failed", cause)

	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatal("errors.As(CodedError) = false")
	}
	if got, want := coded.Code, CodeCDPUnavailable; got != want {
		t.Fatalf("code = %q; want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(cause) = false; want unwrap to cause")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(CodeTeamNotFound, "no such team", nil))
	if !HasCode(err, CodeTeamNotFound) {
		t.Fatal("HasCode(TeamNotFound) = false; want true")
	}
	if HasCode(err, CodeEvalFailure) {
		t.Fatal("HasCode(EvalFailure) = true; want false")
	}
	if HasCode(errors.New("plain"), CodeEvalFailure) {
		t.Fatal("HasCode(plain error) = true; want false")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"target closed cause", NewError(CodeEvalFailure, "evaluation failed", errors.New("rpc error: target closed")), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"detached node", NewError(CodeEvalFailure, "click failed", errors.New("node is detached from document")), true},
		{"persistent markup change", NewError(CodeEvalFailure, "selector matched nothing", nil), false},
		{"plain logic error", errors.New("team name is required"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
}
