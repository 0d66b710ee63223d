package announcement

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the calendar-date format used by authored content.
const dateLayout = "2006-01-02"

// Domain errors
var (
	ErrEmptyID    = errors.New("announcement id cannot be empty")
	ErrEmptyTitle = errors.New("announcement title cannot be empty")
)

// Announcement is an authored, time-boxed notice shown behind the bell.
// StartDate and EndDate are calendar dates (YYYY-MM-DD) without time zone;
// the window is inclusive on both ends.
type Announcement struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"` // Markdown content
	StartDate   string `yaml:"startDate" json:"startDate"`
	EndDate     string `yaml:"endDate" json:"endDate"`
	Link        string `yaml:"link" json:"link,omitempty"`
}

// Validate checks the fields a catalog entry cannot do without.
// Dates are deliberately not checked here: an unparsable date makes the
// announcement never active rather than rejecting the catalog.
// PRE: none
// POST: Returns nil if valid, the first violation otherwise
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// HasValidWindow reports whether both dates parse.
// INVARIANT: Announcement is not mutated
func (a *Announcement) HasValidWindow() bool {
	_, okStart := ParseDate(a.StartDate, time.Local)
	_, okEnd := ParseDate(a.EndDate, time.Local)
	return okStart && okEnd
}

// ParseDate parses a YYYY-MM-DD string into midnight of that day in loc.
// PRE: loc is non-nil
// POST: ok is false unless all three parts are integers; out-of-range
// months and days roll over the way time.Date normalises them
// (2026-02-30 is 2026-03-02)
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// midnight truncates t to the start of its calendar day in its own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsActive reports whether today falls inside the announcement's window.
// Dates are interpreted in today's location.
// PRE: none
// POST: true iff start <= midnight(today) <= end; false if either date is malformed
func IsActive(a Announcement, today time.Time) bool {
	loc := today.Location()
	start, ok := ParseDate(a.StartDate, loc)
	if !ok {
		return false
	}
	end, ok := ParseDate(a.EndDate, loc)
	if !ok {
		return false
	}
	day := midnight(today)
	return !day.Before(start) && !day.After(end)
}

// FilterActive returns the announcements active on today, in input order.
// PRE: none
// POST: Result is a subsequence of list
func FilterActive(list []Announcement, today time.Time) []Announcement {
	var active []Announcement
	for _, a := range list {
		if IsActive(a, today) {
			active = append(active, a)
		}
	}
	return active
}

// IDs returns the IDs of the given announcements.
func IDs(list []Announcement) []string {
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}

// FormatDate renders a calendar date as "Jan 2, 2006".
// Malformed input is returned unchanged.
func FormatDate(s string) string {
	t, ok := ParseDate(s, time.Local)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatRange renders "Jan 2, 2006 - Jan 3, 2006" for the panel list.
func (a *Announcement) FormatRange() string {
	return FormatDate(a.StartDate) + " - " + FormatDate(a.EndDate)
}
