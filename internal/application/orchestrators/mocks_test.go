package orchestrators

import (
	"context"
	"errors"
	"time"

	"ukccu/internal/adapters/email"
	submissionStore "ukccu/internal/adapters/storage/submission"
	"ukccu/internal/domain/announcement"
	"ukccu/internal/domain/submission"
	"ukccu/internal/domain/votingstatus"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "0f8c2a91-77aa-4b1c-9d2e-112233445566" }

// mockSubmissionStore implements SubmissionStore in memory.
type mockSubmissionStore struct {
	records   map[string][]submission.Record // visitor|feature -> records
	appendErr error
	existsErr error
	appends   int
}

func newMockSubmissionStore() *mockSubmissionStore {
	return &mockSubmissionStore{records: map[string][]submission.Record{}}
}

func (m *mockSubmissionStore) key(visitor string, f submission.Feature) string {
	return visitor + "|" + string(f)
}

// Append implements SubmissionStore.
func (m *mockSubmissionStore) Append(_ context.Context, visitor string, f submission.Feature, r submission.Record) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appends++
	k := m.key(visitor, f)
	m.records[k] = append(m.records[k], r)
	return nil
}

// Exists implements SubmissionStore.
func (m *mockSubmissionStore) Exists(_ context.Context, visitor string, f submission.Feature, match func(submission.Record) bool) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, r := range m.records[m.key(visitor, f)] {
		if match(r) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubmissionStore) list(visitor string, f submission.Feature) []submission.Record {
	return m.records[m.key(visitor, f)]
}

// mockMarkers implements MarkerStore.
type mockMarkers struct {
	values map[string]string
	getErr error
}

func newMockMarkers() *mockMarkers { return &mockMarkers{values: map[string]string{}} }

func (m *mockMarkers) Get(_ context.Context, ns, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[ns+"|"+key]
	return v, ok, nil
}

func (m *mockMarkers) Set(_ context.Context, ns, key, value string) error {
	m.values[ns+"|"+key] = value
	return nil
}

// mockVoteLock implements VoteLock.
type mockVoteLock struct {
	voted   map[string]time.Time
	lockErr error
	locks   int
	unlocks int
}

func newMockVoteLock() *mockVoteLock { return &mockVoteLock{voted: map[string]time.Time{}} }

func (m *mockVoteLock) HasVoted(_ context.Context, visitor string) (bool, error) {
	_, ok := m.voted[visitor]
	return ok, nil
}

func (m *mockVoteLock) Lock(_ context.Context, visitor string, at time.Time) error {
	m.locks++
	if m.lockErr != nil {
		return m.lockErr
	}
	m.voted[visitor] = at
	return nil
}

func (m *mockVoteLock) Unlock(_ context.Context, visitor string) error {
	m.unlocks++
	delete(m.voted, visitor)
	return nil
}

// failingSource is a votingstatus.Source that always errors.
type failingSource struct{}

func (failingSource) Current(context.Context) (votingstatus.Status, error) {
	return votingstatus.Status{}, errors.New("sheets unavailable")
}

func openStatus() votingstatus.Source {
	return votingstatus.StaticSource{Status: votingstatus.Default()}
}

// recordingSender implements email.Sender.
type recordingSender struct {
	sent []email.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) (email.Receipt, error) {
	if r.err != nil {
		return email.Receipt{}, r.err
	}
	r.sent = append(r.sent, msg)
	return email.Receipt{MessageID: "m1", SentAt: fixedTime}, nil
}

// recordingNotifier implements notify.Notifier.
type recordingNotifier struct {
	texts []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

// mockReadState implements ReadStateStore.
type mockReadState struct {
	sets    map[string]announcement.ReadSet
	markErr error
}

func newMockReadState() *mockReadState {
	return &mockReadState{sets: map[string]announcement.ReadSet{}}
}

func (m *mockReadState) Load(_ context.Context, visitor string) (announcement.ReadSet, error) {
	if s, ok := m.sets[visitor]; ok {
		return s, nil
	}
	return announcement.NewReadSet(nil), nil
}

func (m *mockReadState) MarkRead(ctx context.Context, visitor string, ids []string) error {
	if m.markErr != nil {
		return m.markErr
	}
	cur, _ := m.Load(ctx, visitor)
	m.sets[visitor] = cur.Union(ids)
	return nil
}

var errSave = submissionStore.ErrSaveFailed
