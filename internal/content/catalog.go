package content

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"ukccu/internal/domain/announcement"
	"ukccu/internal/domain/event"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the authored site content. It is read once at startup and
// never mutated.
type Catalog struct {
	Announcements []announcement.Announcement `yaml:"announcements"`
	Events        []event.Event               `yaml:"events"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path returns Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a catalog.
// PRE: none
// POST: IDs are non-empty and unique per kind; entries with unparsable
// dates are kept and logged, they simply never become active
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	seen := map[string]bool{}
	for i := range c.Announcements {
		a := &c.Announcements[i]
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("announcement %d: %w", i, err)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate announcement id %q", a.ID)
		}
		seen[a.ID] = true
		if !a.HasValidWindow() {
			slog.Warn("content_event", "event", "announcement_bad_dates", "id", a.ID, "start", a.StartDate, "end", a.EndDate)
		}
	}

	seen = map[string]bool{}
	for i := range c.Events {
		e := &c.Events[i]
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate event id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return &c, nil
}
