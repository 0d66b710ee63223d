package projections

import (
	"context"
	"html/template"
	"time"

	"ukccu/internal/domain/announcement"
)

// AnnouncementPanelReadState loads a visitor's read announcement IDs.
type AnnouncementPanelReadState interface {
	Load(ctx context.Context, visitor string) (announcement.ReadSet, error)
}

// AnnouncementPanelDeps holds dependencies for the panel projection.
type AnnouncementPanelDeps struct {
	Announcements []announcement.Announcement
	ReadState     AnnouncementPanelReadState
}

// AnnouncementPanelInput selects the visitor and the moment to render for.
type AnnouncementPanelInput struct {
	Visitor string
	Now     time.Time
}

// AnnouncementItem is one row of the panel list.
type AnnouncementItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	DateRange   string        `json:"dateRange"`
	Description template.HTML `json:"description"`
	Link        string        `json:"link,omitempty"`
	Unread      bool          `json:"unread"`
}

// AnnouncementPanelView is what the bell, badge and panel render from.
type AnnouncementPanelView struct {
	Items       []AnnouncementItem `json:"items"`
	Badge       int                `json:"badge"`
	BellVisible bool               `json:"bellVisible"`
}

// QueryAnnouncementPanel builds the announcement widget for one visitor.
// PRE: deps.ReadState is non-nil
// POST: Items are the active announcements in catalog order; Badge counts unread ones;
// BellVisible is false when nothing is active
func QueryAnnouncementPanel(ctx context.Context, input AnnouncementPanelInput, deps AnnouncementPanelDeps) (AnnouncementPanelView, error) {
	active := announcement.FilterActive(deps.Announcements, input.Now)
	read, err := deps.ReadState.Load(ctx, input.Visitor)
	if err != nil {
		return AnnouncementPanelView{}, err
	}

	items := make([]AnnouncementItem, 0, len(active))
	for _, a := range active {
		items = append(items, AnnouncementItem{
			ID:          a.ID,
			Title:       a.Title,
			DateRange:   a.FormatRange(),
			Description: RenderMarkdown(a.Description),
			Link:        a.Link,
			Unread:      !read.Has(a.ID),
		})
	}
	return AnnouncementPanelView{
		Items:       items,
		Badge:       announcement.UnreadCount(active, read),
		BellVisible: len(active) > 0,
	}, nil
}
