package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type noopRefresher struct{}

func (noopRefresher) Refresh(context.Context) error { return nil }

type noopSweeper struct{}

func (noopSweeper) Sweep(context.Context, time.Time) error { return nil }

func TestStartAndStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(noopRefresher{}, noopSweeper{}, 10*time.Minute, time.Hour, logger)

	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	s.Stop()
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{10 * time.Minute, 10},
		{time.Hour, 60},
		{30 * time.Second, 1},
		{0, 1},
		{-time.Minute, 1},
	}

	for _, tt := range tests {
		if got := minutes(tt.d); got != tt.want {
			t.Errorf("minutes(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}
