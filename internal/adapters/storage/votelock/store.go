package votelock

import (
	"context"
	"fmt"
	"time"

	"ukccu/internal/adapters/storage/kv"
)

// Keys written once a visitor has voted.
const (
	KeyVoted     = "ukccu_voted"
	KeyTimestamp = "ukccu_vote_timestamp"
)

// Store is the one-shot vote flag per visitor.
type Store interface {
	HasVoted(ctx context.Context, visitor string) (bool, error)
	Lock(ctx context.Context, visitor string, at time.Time) error
	// Unlock clears a lock taken for a ballot that was never stored.
	Unlock(ctx context.Context, visitor string) error
}

// KVStore keeps the flag as the string "true".
// INVARIANT: once a ballot is stored, HasVoted stays true for that visitor
type KVStore struct {
	kv kv.Store
}

// NewKVStore creates a vote lock over a key-value backend.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

// HasVoted reports whether the flag equals "true". Any other value is unlocked.
func (s *KVStore) HasVoted(ctx context.Context, visitor string) (bool, error) {
	v, ok, err := s.kv.Get(ctx, visitor, KeyVoted)
	if err != nil {
		return false, fmt.Errorf("read vote lock: %w", err)
	}
	return ok && v == "true", nil
}

// Lock sets the flag and records when the vote was cast.
func (s *KVStore) Lock(ctx context.Context, visitor string, at time.Time) error {
	if err := s.kv.Set(ctx, visitor, KeyVoted, "true"); err != nil {
		return fmt.Errorf("set vote lock: %w", err)
	}
	if err := s.kv.Set(ctx, visitor, KeyTimestamp, at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("set vote timestamp: %w", err)
	}
	return nil
}

// Unlock overwrites the flag with "false". The timestamp is left as written.
func (s *KVStore) Unlock(ctx context.Context, visitor string) error {
	if err := s.kv.Set(ctx, visitor, KeyVoted, "false"); err != nil {
		return fmt.Errorf("clear vote lock: %w", err)
	}
	return nil
}
