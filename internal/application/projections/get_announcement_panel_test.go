package projections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ukccu/internal/domain/announcement"
)

type mockReadState struct {
	read announcement.ReadSet
	err  error
}

func (m mockReadState) Load(context.Context, string) (announcement.ReadSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.read == nil {
		return announcement.NewReadSet(nil), nil
	}
	return m.read, nil
}

var panelAnnouncements = []announcement.Announcement{
	{ID: "youth", Title: "Youth Retreat", Description: "Limited **spots**.", StartDate: "2026-02-10", EndDate: "2026-02-28", Link: "/events#youth-retreat"},
	{ID: "study", Title: "Weekly Bible Study", Description: "Every Wednesday.", StartDate: "2026-02-26", EndDate: "2026-02-28"},
	{ID: "easter", Title: "Easter", StartDate: "2026-02-17", EndDate: "2026-02-18"},
}

// TestQueryAnnouncementPanel_BadgeAndItems renders active items only.
func TestQueryAnnouncementPanel_BadgeAndItems(t *testing.T) {
	now := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	deps := AnnouncementPanelDeps{
		Announcements: panelAnnouncements,
		ReadState:     mockReadState{read: announcement.NewReadSet([]string{"youth", "easter"})},
	}
	view, err := QueryAnnouncementPanel(context.Background(), AnnouncementPanelInput{Visitor: "v1", Now: now}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 2 || view.Items[0].ID != "youth" || view.Items[1].ID != "study" {
		t.Fatalf("items = %+v", view.Items)
	}
	if view.Badge != 1 || !view.BellVisible {
		t.Errorf("badge = %d, bell = %v", view.Badge, view.BellVisible)
	}
	first := view.Items[0]
	if first.Unread || first.Link != "/events#youth-retreat" || first.DateRange != "Feb 10, 2026 - Feb 28, 2026" {
		t.Errorf("first item = %+v", first)
	}
	if !strings.Contains(string(first.Description), "<strong>spots</strong>") {
		t.Errorf("description not rendered: %s", first.Description)
	}
}

// TestQueryAnnouncementPanel_NothingActive hides the bell.
func TestQueryAnnouncementPanel_NothingActive(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	view, err := QueryAnnouncementPanel(context.Background(), AnnouncementPanelInput{Visitor: "v1", Now: now},
		AnnouncementPanelDeps{Announcements: panelAnnouncements, ReadState: mockReadState{}})
	if err != nil || view.BellVisible || view.Badge != 0 || len(view.Items) != 0 {
		t.Errorf("got %+v, %v", view, err)
	}
}

// TestQueryAnnouncementPanel_ReadStateError propagates.
func TestQueryAnnouncementPanel_ReadStateError(t *testing.T) {
	_, err := QueryAnnouncementPanel(context.Background(), AnnouncementPanelInput{Visitor: "v1", Now: time.Now()},
		AnnouncementPanelDeps{Announcements: panelAnnouncements, ReadState: mockReadState{err: errors.New("db")}})
	if err == nil {
		t.Error("expected error")
	}
}

// TestRenderMarkdown_EscapesRawHTML keeps script tags out of the page.
func TestRenderMarkdown_EscapesRawHTML(t *testing.T) {
	out := string(RenderMarkdown("hello <script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML passed through: %s", out)
	}
}
