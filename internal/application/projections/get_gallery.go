package projections

import (
	"html/template"

	"ukccu/internal/domain/event"
)

// FilterAll is the filter control value that shows every event.
const FilterAll = "*"

// GalleryInput carries the requested category filter ("" or "*" for all).
type GalleryInput struct {
	Filter string
}

// GalleryDeps holds dependencies for the gallery projection.
type GalleryDeps struct {
	Events []event.Event
}

// FilterControl is one button of the category filter bar.
type FilterControl struct {
	Value  string
	Label  string
	Active bool
}

// Card is a gallery tile.
type Card struct {
	ID            string
	Category      string
	CategoryLabel string
	Title         string
	Image         string
	Date          string
	ModalID       string
}

// Modal is the detail dialog opened from a card.
type Modal struct {
	ID            string
	Title         string
	Image         string
	CategoryLabel string
	Date          string
	Venue         string
	Time          string
	Leader        string
	ContactName   string
	ContactPhone  string
	Description   template.HTML
}

// GalleryView is the fully built gallery page.
type GalleryView struct {
	Filters []FilterControl
	Cards   []Card
	Modals  []Modal
}

// QueryGallery renders every event as a card and a modal.
// An unknown filter falls back to showing all events.
// PRE: none
// POST: len(Cards) == len(Modals); Cards follow catalog order; exactly one filter is Active
func QueryGallery(input GalleryInput, deps GalleryDeps) GalleryView {
	categories := event.Categories(deps.Events)

	active := FilterAll
	for _, c := range categories {
		if c == input.Filter {
			active = c
		}
	}

	view := GalleryView{
		Filters: make([]FilterControl, 0, len(categories)+1),
	}
	view.Filters = append(view.Filters, FilterControl{Value: FilterAll, Label: "All", Active: active == FilterAll})
	for _, c := range categories {
		e := event.Event{Category: c}
		view.Filters = append(view.Filters, FilterControl{Value: c, Label: e.CategoryLabel(), Active: active == c})
	}

	for _, e := range deps.Events {
		if active != FilterAll && e.Category != active {
			continue
		}
		label := e.CategoryLabel()
		date := e.FormatDate()
		view.Cards = append(view.Cards, Card{
			ID:            e.ID,
			Category:      e.Category,
			CategoryLabel: label,
			Title:         e.Title,
			Image:         e.Image,
			Date:          date,
			ModalID:       e.ModalID(),
		})
		view.Modals = append(view.Modals, Modal{
			ID:            e.ModalID(),
			Title:         e.Title,
			Image:         e.Image,
			CategoryLabel: label,
			Date:          date,
			Venue:         e.Venue,
			Time:          e.Time,
			Leader:        e.Leader,
			ContactName:   e.ContactName,
			ContactPhone:  e.ContactPhone,
			Description:   RenderMarkdown(e.Description),
		})
	}
	return view
}
