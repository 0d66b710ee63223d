package event

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyID       = errors.New("event ID is required")
	ErrEmptyTitle    = errors.New("event title is required")
	ErrEmptyCategory = errors.New("event category is required")
)

// Event is one entry in the events gallery.
type Event struct {
	ID           string `yaml:"id" json:"id"`
	Category     string `yaml:"category" json:"category"`
	Title        string `yaml:"title" json:"title"`
	Image        string `yaml:"image" json:"image"`
	Date         string `yaml:"date" json:"date"`
	Venue        string `yaml:"venue" json:"venue"`
	Time         string `yaml:"time" json:"time"`
	Leader       string `yaml:"leader" json:"leader"`
	ContactName  string `yaml:"contactName" json:"contactName"`
	ContactPhone string `yaml:"contactPhone" json:"contactPhone"`
	Description  string `yaml:"description" json:"description"`
}

// Validate checks the fields the gallery cannot render without.
// PRE: none
// POST: Returns nil if ID, Title and Category are non-empty
func (e *Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// CategoryLabel replaces the first hyphen of the category with a space,
// so "bible-study" reads "bible study".
func (e *Event) CategoryLabel() string {
	return strings.Replace(e.Category, "-", " ", 1)
}

// FormatDate renders the event date as "January 2, 2006".
// Unparsable dates are returned unchanged.
func (e *Event) FormatDate() string {
	t, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return e.Date
	}
	return t.Format("January 2, 2006")
}

// ModalID is the DOM id of the event's detail dialog.
func (e *Event) ModalID() string {
	return "eventModal-" + e.ID
}

// Categories returns the distinct categories in first-seen order.
func Categories(events []Event) []string {
	seen := make(map[string]bool, len(events))
	var out []string
	for _, e := range events {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	return out
}
