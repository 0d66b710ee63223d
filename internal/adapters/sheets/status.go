package sheets

import (
	"context"
	"strings"
	"sync"
	"time"

	"ukccu/internal/domain/votingstatus"
)

// ConfigTab holds the voting configuration as key/value rows.
const ConfigTab = "CONFIG"

// Reader is the read side of Client.
type Reader interface {
	ReadAll(ctx context.Context, tab string) ([][]any, error)
}

// StatusSource reads the voting status from the CONFIG tab.
// Results are cached for TTL so page loads do not each hit the API.
type StatusSource struct {
	reader Reader
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	cached  votingstatus.Status
	fetched time.Time
}

// NewStatusSource creates a source over reader. ttl <= 0 disables caching.
func NewStatusSource(reader Reader, ttl time.Duration) *StatusSource {
	return &StatusSource{reader: reader, ttl: ttl, now: time.Now}
}

// Current implements votingstatus.Source.
// PRE: none
// POST: Returns a freshly read status, or the cached one while younger than TTL
func (s *StatusSource) Current(ctx context.Context) (votingstatus.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 && !s.fetched.IsZero() && s.now().Sub(s.fetched) < s.ttl {
		return s.cached, nil
	}

	rows, err := s.reader.ReadAll(ctx, ConfigTab)
	if err != nil {
		return votingstatus.Status{}, err
	}
	kv := make(map[string]string, len(rows))
	for _, row := range rows {
		key := strings.TrimSpace(Cell(row, 0))
		if key != "" {
			kv[key] = strings.TrimSpace(Cell(row, 1))
		}
	}
	status, err := votingstatus.FromConfig(kv)
	if err != nil {
		return votingstatus.Status{}, err
	}
	s.cached, s.fetched = status, s.now()
	return status, nil
}
