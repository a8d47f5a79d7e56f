package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestZeroTimeoutPerformsExactlyOneCheck(t *testing.T) {
	checks := 0
	p := New(Config{Interval: 10 * time.Millisecond, Timeout: 0})

	start := time.Now()
	found, err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		checks++
		return false, nil
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if found {
		t.Fatal("Run() = found; want expired")
	}
	if got, want := checks, 1; got != want {
		t.Fatalf("checks = %d; want %d", got, want)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Fatalf("zero-timeout run took %v; want immediate return", elapsed)
	}
}

func TestZeroTimeoutFoundImmediately(t *testing.T) {
	p := New(Config{Interval: 10 * time.Millisecond, Timeout: 0})
	found, err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		return true, nil
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !found {
		t.Fatal("Run() = expired; want found")
	}
}

func TestFoundAfterSecondInterval(t *testing.T) {
	const interval = 20 * time.Millisecond
	checks := 0
	p := New(Config{Interval: interval, Timeout: time.Second})

	start := time.Now()
	found, err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		checks++
		return checks >= 3, nil
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !found {
		t.Fatal("Run() = expired; want found")
	}
	if got, want := checks, 3; got != want {
		t.Fatalf("checks = %d; want %d (immediate + 2 retries)", got, want)
	}

	elapsed := time.Since(start)
	if elapsed < 2*interval || elapsed > 2*interval+100*time.Millisecond {
		t.Fatalf("elapsed = %v; want ~%v", elapsed, 2*interval)
	}
}

func TestExpiresWithoutFound(t *testing.T) {
	p := New(Config{Interval: 10 * time.Millisecond, Timeout: 35 * time.Millisecond})
	checks := 0
	found, err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		checks++
		return false, nil
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if found {
		t.Fatal("Run() = found; want expired")
	}
	if checks < 2 {
		t.Fatalf("checks = %d; want multiple cycles before expiry", checks)
	}
}

func TestReloadFailureDoesNotAbort(t *testing.T) {
	reloads := 0
	checks := 0
	p := New(Config{Interval: 5 * time.Millisecond, Timeout: time.Second, ReloadBeforeCheck: true})

	found, err := p.Run(context.Background(),
		func(ctx context.Context) (bool, error) {
			checks++
			return checks >= 2, nil
		},
		func(ctx context.Context) error {
			reloads++
			return errors.New("net::ERR_NETWORK_CHANGED")
		})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !found {
		t.Fatal("Run() = expired; want found despite reload failures")
	}
	if got, want := reloads, 1; got != want {
		t.Fatalf("reloads = %d; want %d", got, want)
	}
}

func TestNoReloadBeforeFirstCheck(t *testing.T) {
	reloads := 0
	p := New(Config{Interval: 5 * time.Millisecond, Timeout: 0, ReloadBeforeCheck: true})

	_, err := p.Run(context.Background(),
		func(ctx context.Context) (bool, error) { return true, nil },
		func(ctx context.Context) error { reloads++; return nil })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := reloads, 0; got != want {
		t.Fatalf("reloads before first check = %d; want %d", got, want)
	}
}

func TestCheckErrorTreatedAsNotFound(t *testing.T) {
	checks := 0
	p := New(Config{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond})
	found, err := p.Run(context.Background(), func(ctx context.Context) (bool, error) {
		checks++
		return false, errors.New("session closed")
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v; check errors must not propagate", err)
	}
	if found {
		t.Fatal("Run() = found; want expired")
	}
	if checks < 2 {
		t.Fatalf("checks = %d; want polling to continue past errors", checks)
	}
}

func TestContextCancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(Config{Interval: 50 * time.Millisecond, Timeout: time.Minute})

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	found, err := p.Run(ctx, func(ctx context.Context) (bool, error) {
		return false, nil
	}, nil)
	if found {
		t.Fatal("Run() = found; want canceled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v; want context.Canceled", err)
	}
}
