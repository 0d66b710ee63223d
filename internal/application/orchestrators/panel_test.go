package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"ukccu/internal/domain/announcement"
	"ukccu/internal/domain/panel"
)

var testAnnouncements = []announcement.Announcement{
	{ID: "a1", Title: "Prayer week", StartDate: "2026-02-20", EndDate: "2026-03-05"},
	{ID: "a2", Title: "Elections", StartDate: "2026-03-01", EndDate: "2026-03-01"},
	{ID: "a3", Title: "Old", StartDate: "2025-01-01", EndDate: "2025-01-31"},
	{ID: "a4", Title: "Broken", StartDate: "soon", EndDate: "2026-12-31"},
}

func panelDeps(rs *mockReadState) PanelEventDeps {
	return PanelEventDeps{Announcements: testAnnouncements, ReadState: rs, Now: fixedNow}
}

// TestExecutePanelEvent_BellOpensAndMarks clears the badge.
func TestExecutePanelEvent_BellOpensAndMarks(t *testing.T) {
	rs := newMockReadState()
	ctx := context.Background()

	res, err := ExecutePanelEvent(ctx, PanelEventInput{Visitor: "v1", State: "closed", Event: "outside"}, panelDeps(rs))
	if err != nil || res.State != panel.Closed || res.Badge != 2 {
		t.Fatalf("before open: %+v, %v", res, err)
	}

	res, err = ExecutePanelEvent(ctx, PanelEventInput{Visitor: "v1", State: "closed", Event: "bell"}, panelDeps(rs))
	if err != nil || res.State != panel.Open || res.Badge != 0 {
		t.Fatalf("open: %+v, %v", res, err)
	}
	read := rs.sets["v1"]
	if !read.Has("a1") || !read.Has("a2") || read.Has("a3") || read.Has("a4") {
		t.Errorf("read set = %v", read.Slice())
	}

	res, err = ExecutePanelEvent(ctx, PanelEventInput{Visitor: "v1", State: "open", Event: "bell"}, panelDeps(rs))
	if err != nil || res.State != panel.Closed || res.Badge != 0 {
		t.Errorf("close: %+v, %v", res, err)
	}
}

// TestExecutePanelEvent_NewAnnouncementRaisesBadge counts only unseen items.
func TestExecutePanelEvent_NewAnnouncementRaisesBadge(t *testing.T) {
	rs := newMockReadState()
	rs.sets["v1"] = announcement.NewReadSet([]string{"a1", "a2"})
	deps := panelDeps(rs)
	deps.Announcements = append([]announcement.Announcement{
		{ID: "a5", Title: "New", StartDate: "2026-03-01", EndDate: "2026-03-10"},
	}, testAnnouncements...)

	res, err := ExecutePanelEvent(context.Background(), PanelEventInput{Visitor: "v1", State: "open", Event: "panel"}, deps)
	if err != nil || res.State != panel.Open || res.Badge != 1 {
		t.Errorf("got %+v, %v", res, err)
	}
}

// TestExecutePanelEvent_Errors rejects bad input and surfaces store failures.
func TestExecutePanelEvent_Errors(t *testing.T) {
	rs := newMockReadState()
	if _, err := ExecutePanelEvent(context.Background(), PanelEventInput{State: "ajar", Event: "bell"}, panelDeps(rs)); !errors.Is(err, panel.ErrUnknownState) {
		t.Errorf("err = %v", err)
	}
	if _, err := ExecutePanelEvent(context.Background(), PanelEventInput{State: "open", Event: "hover"}, panelDeps(rs)); !errors.Is(err, panel.ErrUnknownEvent) {
		t.Errorf("err = %v", err)
	}

	rs.markErr = errors.New("quota")
	if _, err := ExecutePanelEvent(context.Background(), PanelEventInput{Visitor: "v1", State: "closed", Event: "bell"}, panelDeps(rs)); err == nil {
		t.Error("expected mark-read failure")
	}
}

// TestExecutePanelEvent_MidnightRollover uses the current day on every event.
func TestExecutePanelEvent_MidnightRollover(t *testing.T) {
	rs := newMockReadState()
	deps := panelDeps(rs)
	deps.Now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC) }
	res, err := ExecutePanelEvent(context.Background(), PanelEventInput{Visitor: "v1", State: "closed", Event: "close"}, deps)
	if err != nil || res.Badge != 1 {
		t.Errorf("a2 expired at midnight; got %+v, %v", res, err)
	}
}
