package votingstatus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrClosed     = errors.New("voting is closed")
	ErrNotYetOpen = errors.New("voting window has not started")
	ErrEnded      = errors.New("voting window has ended")
	ErrMalformed  = errors.New("malformed voting status")
)

const (
	Open   = "OPEN"
	Closed = "CLOSED"
)

// Config keys read from a remote status source.
const (
	KeyStatus = "voting_status"
	KeyStart  = "voting_start"
	KeyEnd    = "voting_end"
	KeyNotice = "notice_message"
)

// Status describes whether nominations and voting are accepted.
type Status struct {
	Status string
	Start  time.Time
	End    time.Time
	Notice string
}

// Check reports whether a submission at now is inside the window.
// PRE: none
// POST: nil when Status is OPEN and Start <= now < End; ErrClosed, ErrNotYetOpen or ErrEnded otherwise
func (s Status) Check(now time.Time) error {
	if s.Status != Open {
		return ErrClosed
	}
	if !s.Start.IsZero() && now.Before(s.Start) {
		return ErrNotYetOpen
	}
	if !s.End.IsZero() && !now.Before(s.End) {
		return ErrEnded
	}
	return nil
}

// ClosedMessage returns the notice to show for ErrClosed, falling back to def.
func (s Status) ClosedMessage(def string) string {
	if strings.TrimSpace(s.Notice) == "" {
		return def
	}
	return s.Notice
}

// FromConfig builds a Status from key/value pairs.
// Timestamps are RFC 3339. An empty start or end leaves that bound open.
func FromConfig(kv map[string]string) (Status, error) {
	s := Status{
		Status: strings.ToUpper(strings.TrimSpace(kv[KeyStatus])),
		Notice: kv[KeyNotice],
	}
	if s.Status == "" {
		return Status{}, fmt.Errorf("%w: missing %s", ErrMalformed, KeyStatus)
	}
	var err error
	if s.Start, err = parseBound(kv[KeyStart]); err != nil {
		return Status{}, fmt.Errorf("%w: %s: %v", ErrMalformed, KeyStart, err)
	}
	if s.End, err = parseBound(kv[KeyEnd]); err != nil {
		return Status{}, fmt.Errorf("%w: %s: %v", ErrMalformed, KeyEnd, err)
	}
	return s, nil
}

func parseBound(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

// Source yields the current voting status.
type Source interface {
	Current(ctx context.Context) (Status, error)
}

// StaticSource always returns the same status.
type StaticSource struct {
	Status Status
}

// Current implements Source.
func (s StaticSource) Current(context.Context) (Status, error) {
	return s.Status, nil
}

// Default is the status used when nothing else is configured.
func Default() Status {
	return Status{
		Status: Open,
		Start:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Notice: "Nominations are currently open for all executive positions.",
	}
}
