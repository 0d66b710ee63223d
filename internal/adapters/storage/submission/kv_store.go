package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ukccu/internal/adapters/storage/kv"
	domain "ukccu/internal/domain/submission"
)

// KVStore keeps each visitor's records as one JSON array per feature key.
// Append reads the whole list, appends, and writes it back.
// INVARIANT: records are never edited or removed
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a Store over a key-value backend.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// Append implements Store.
// PRE: r has a SubmissionID
// POST: r is the last element of the visitor's list; write failures wrap ErrSaveFailed
func (s *KVStore) Append(ctx context.Context, visitor string, f domain.Feature, r domain.Record) error {
	records, err := s.List(ctx, visitor, f)
	if err != nil {
		return err
	}
	records = append(records, r)
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := s.kv.Set(ctx, visitor, f.StorageKey(), string(blob)); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// List implements Store. An absent key is an empty list.
func (s *KVStore) List(ctx context.Context, visitor string, f domain.Feature) ([]domain.Record, error) {
	blob, ok, err := s.kv.Get(ctx, visitor, f.StorageKey())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return decode(blob)
}

// Exists implements Store.
func (s *KVStore) Exists(ctx context.Context, visitor string, f domain.Feature, match func(domain.Record) bool) (bool, error) {
	return exists(ctx, s, visitor, f, match)
}

// ListAll implements Store. Namespaces holding unreadable lists are skipped.
func (s *KVStore) ListAll(ctx context.Context, f domain.Feature) ([]domain.Record, error) {
	entries, err := s.kv.Scan(ctx, f.StorageKey())
	if err != nil {
		return nil, err
	}
	var out []domain.Record
	for _, e := range entries {
		records, err := decode(e.Value)
		if err != nil {
			slog.Warn("submission_event", "event", "corrupt_list_skipped", "feature", string(f), "visitor", e.Namespace, "error", err)
			continue
		}
		out = append(out, records...)
	}
	return out, nil
}

func decode(blob string) ([]domain.Record, error) {
	var records []domain.Record
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformed, err)
	}
	return records, nil
}
