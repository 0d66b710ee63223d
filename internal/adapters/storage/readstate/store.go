package readstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ukccu/internal/adapters/storage/kv"
	"ukccu/internal/domain/announcement"
)

// Key is the storage key of a visitor's read announcement IDs.
const Key = "ukccu_read_announcements"

// Store tracks which announcements each visitor has acknowledged.
type Store interface {
	Load(ctx context.Context, visitor string) (announcement.ReadSet, error)
	MarkRead(ctx context.Context, visitor string, ids []string) error
}

// KVStore persists the read set as a JSON array of strings.
// Concurrent MarkRead calls for one visitor are last-writer-wins.
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a read-state store over a key-value backend.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Load returns the visitor's read set.
// PRE: none
// POST: absent or corrupt data yields an empty set; only backend errors are returned
func (s *KVStore) Load(ctx context.Context, visitor string) (announcement.ReadSet, error) {
	blob, ok, err := s.kv.Get(ctx, visitor, Key)
	if err != nil {
		return nil, fmt.Errorf("load read state: %w", err)
	}
	if !ok {
		return announcement.NewReadSet(nil), nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(blob), &ids); err != nil {
		slog.Warn("announcement_event", "event", "corrupt_read_state", "visitor", visitor, "error", err)
		return announcement.NewReadSet(nil), nil
	}
	return announcement.NewReadSet(ids), nil
}

// MarkRead unions ids into the visitor's read set.
// POST: every previously read ID is still read
func (s *KVStore) MarkRead(ctx context.Context, visitor string, ids []string) error {
	current, err := s.Load(ctx, visitor)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(current.Union(ids).Slice())
	if err != nil {
		return fmt.Errorf("encode read state: %w", err)
	}
	if err := s.kv.Set(ctx, visitor, Key, string(blob)); err != nil {
		return fmt.Errorf("save read state: %w", err)
	}
	return nil
}
