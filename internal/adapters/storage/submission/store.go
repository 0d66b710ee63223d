package submission

import (
	"context"
	"errors"

	domain "ukccu/internal/domain/submission"
)

// ErrSaveFailed wraps any failure to persist a new record.
var ErrSaveFailed = errors.New("failed to save submission")

// Store is an append-only log of submissions per feature.
// List and Exists only see the given visitor's records.
type Store interface {
	Append(ctx context.Context, visitor string, f domain.Feature, r domain.Record) error
	List(ctx context.Context, visitor string, f domain.Feature) ([]domain.Record, error)
	Exists(ctx context.Context, visitor string, f domain.Feature, match func(domain.Record) bool) (bool, error)
	// ListAll returns every visitor's records for the organiser export.
	ListAll(ctx context.Context, f domain.Feature) ([]domain.Record, error)
}

// exists is the shared List-then-scan implementation of Store.Exists.
func exists(ctx context.Context, s Store, visitor string, f domain.Feature, match func(domain.Record) bool) (bool, error) {
	records, err := s.List(ctx, visitor, f)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if match(r) {
			return true, nil
		}
	}
	return false, nil
}
