package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ukccu/internal/domain/announcement"
	"ukccu/internal/domain/panel"
)

// ReadStateStore loads and extends a visitor's read announcement IDs.
type ReadStateStore interface {
	Load(ctx context.Context, visitor string) (announcement.ReadSet, error)
	MarkRead(ctx context.Context, visitor string, ids []string) error
}

// PanelEventInput is one click on the announcement widget.
type PanelEventInput struct {
	Visitor string
	State   string
	Event   string
}

// PanelEventDeps holds dependencies for PanelEvent.
type PanelEventDeps struct {
	Announcements []announcement.Announcement
	ReadState     ReadStateStore
	Now           func() time.Time
}

// PanelEventResult is the widget state after the click.
type PanelEventResult struct {
	State panel.State `json:"state"`
	Badge int         `json:"badge"`
}

// ExecutePanelEvent applies a click to the panel state machine.
// Opening through the bell marks every currently active announcement read.
// PRE: input.State and input.Event parse
// POST: Badge is the unread count after any mark-read effect
func ExecutePanelEvent(ctx context.Context, input PanelEventInput, deps PanelEventDeps) (PanelEventResult, error) {
	state, err := panel.ParseState(input.State)
	if err != nil {
		return PanelEventResult{}, err
	}
	ev, err := panel.ParseEvent(input.Event)
	if err != nil {
		return PanelEventResult{}, err
	}

	next, effect := panel.Transition(state, ev)
	active := announcement.FilterActive(deps.Announcements, deps.Now())

	if effect == panel.EffectMarkActiveRead {
		if err := deps.ReadState.MarkRead(ctx, input.Visitor, announcement.IDs(active)); err != nil {
			return PanelEventResult{}, fmt.Errorf("mark announcements read: %w", err)
		}
		slog.Info("announcement_event", "event", "marked_read", "count", len(active))
		return PanelEventResult{State: next, Badge: 0}, nil
	}

	read, err := deps.ReadState.Load(ctx, input.Visitor)
	if err != nil {
		return PanelEventResult{}, err
	}
	return PanelEventResult{State: next, Badge: announcement.UnreadCount(active, read)}, nil
}
