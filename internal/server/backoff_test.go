package server

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextBackoffDelayGrowsAndCaps(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     500 * time.Millisecond,
	}

	steps := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 500 * time.Millisecond},
		{9, 500 * time.Millisecond},
	}
	for _, step := range steps {
		if got := NextBackoffDelay(cfg, step.attempt, nil); got != step.want {
			t.Fatalf("attempt %d: got %v want %v", step.attempt, got, step.want)
		}
	}
}

func TestNextBackoffDelayJitterStaysBounded(t *testing.T) {
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     time.Second,
		Jitter:       true,
	}
	rng := rand.New(rand.NewSource(7))

	for attempt := 2; attempt <= 6; attempt++ {
		got := NextBackoffDelay(cfg, attempt, rng)
		if got < 0 || got > time.Duration(1.5*float64(time.Second)) {
			t.Fatalf("attempt %d: jittered delay out of range: %v", attempt, got)
		}
	}
}

func TestNextBackoffDelayZeroInitialDisables(t *testing.T) {
	cfg := BackoffConfig{Multiplier: 2.0}
	if got := NextBackoffDelay(cfg, 3, nil); got != 0 {
		t.Fatalf("expected zero delay, got %v", got)
	}
}
