package votingstatus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ukccu/internal/domain/votingstatus"
)

// TestCheck covers each guard outcome at the window edges.
func TestCheck(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	open := votingstatus.Status{Status: votingstatus.Open, Start: start, End: end}

	tests := []struct {
		name   string
		status votingstatus.Status
		now    time.Time
		want   error
	}{
		{"inside", open, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), nil},
		{"at start", open, start, nil},
		{"before start", open, start.Add(-time.Second), votingstatus.ErrNotYetOpen},
		{"at end", open, end, votingstatus.ErrEnded},
		{"after end", open, end.Add(time.Hour), votingstatus.ErrEnded},
		{"closed", votingstatus.Status{Status: votingstatus.Closed, Start: start, End: end}, start.Add(time.Hour), votingstatus.ErrClosed},
		{"open ended", votingstatus.Status{Status: votingstatus.Open}, end.AddDate(5, 0, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.status.Check(tt.now); !errors.Is(err, tt.want) {
				t.Errorf("Check = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestClosedMessage falls back to the default when no notice is set.
func TestClosedMessage(t *testing.T) {
	s := votingstatus.Status{Status: votingstatus.Closed}
	if got := s.ClosedMessage("closed"); got != "closed" {
		t.Errorf("got %q", got)
	}
	s.Notice = "Back in March."
	if got := s.ClosedMessage("closed"); got != "Back in March." {
		t.Errorf("got %q", got)
	}
}

// TestFromConfig parses the remote key/value layout.
func TestFromConfig(t *testing.T) {
	s, err := votingstatus.FromConfig(map[string]string{
		"voting_status":  "open",
		"voting_start":   "2026-01-01T00:00:00Z",
		"voting_end":     "2026-12-31T23:59:59Z",
		"notice_message": "Nominations are open.",
	})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if s.Status != votingstatus.Open || s.End.Month() != time.December || s.Notice != "Nominations are open." {
		t.Errorf("unexpected status %+v", s)
	}

	if _, err := votingstatus.FromConfig(map[string]string{"voting_status": "OPEN", "voting_end": "soon"}); !errors.Is(err, votingstatus.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
	if _, err := votingstatus.FromConfig(map[string]string{}); !errors.Is(err, votingstatus.ErrMalformed) {
		t.Errorf("expected ErrMalformed for missing status, got %v", err)
	}
}

// TestStaticSource returns the configured default.
func TestStaticSource(t *testing.T) {
	src := votingstatus.StaticSource{Status: votingstatus.Default()}
	s, err := src.Current(context.Background())
	if err != nil || s.Status != votingstatus.Open {
		t.Errorf("Current = %+v, %v", s, err)
	}
}
