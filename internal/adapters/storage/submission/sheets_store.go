package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ukccu/internal/adapters/sheets"
	domain "ukccu/internal/domain/submission"
)

// SheetTable is the subset of the Sheets client the store needs.
type SheetTable interface {
	ReadAll(ctx context.Context, tab string) ([][]any, error)
	AppendRow(ctx context.Context, tab string, row []any) error
}

// Tabs per feature.
var sheetTabs = map[domain.Feature]string{
	domain.FeatureBibleStudy:  "REGISTRATIONS",
	domain.FeatureNominations: "VOTES",
	domain.FeatureVotes:       "BALLOTS",
}

// Leading columns of every tab; field columns follow, named by the header row.
const (
	colVisitor = iota
	colSubmissionID
	colTimestamp
	fixedCols
)

// SheetsStore keeps one row per record in a spreadsheet tab per feature.
// Row 1 is a header; it is written with the first record.
type SheetsStore struct {
	table SheetTable
	mu    sync.Mutex
}

// NewSheetsStore creates a Store over a spreadsheet.
func NewSheetsStore(table SheetTable) *SheetsStore {
	return &SheetsStore{table: table}
}

// Append implements Store.
// PRE: every record of a feature carries the same field names in the same order
// POST: one row appended (plus the header row on an empty tab)
func (s *SheetsStore) Append(ctx context.Context, visitor string, f domain.Feature, r domain.Record) error {
	tab := sheetTabs[f]
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.table.ReadAll(ctx, tab)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if len(rows) == 0 {
		header := []any{"visitor", "submission_id", "timestamp"}
		for _, fl := range r.Fields {
			header = append(header, fl.Name)
		}
		if err := s.table.AppendRow(ctx, tab, header); err != nil {
			return fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	}

	row := []any{visitor, r.SubmissionID, r.Timestamp.UTC().Format(time.RFC3339Nano)}
	for _, fl := range r.Fields {
		row = append(row, fl.Value)
	}
	if err := s.table.AppendRow(ctx, tab, row); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// List implements Store.
func (s *SheetsStore) List(ctx context.Context, visitor string, f domain.Feature) ([]domain.Record, error) {
	return s.read(ctx, f, func(v string) bool { return v == visitor })
}

// Exists implements Store.
func (s *SheetsStore) Exists(ctx context.Context, visitor string, f domain.Feature, match func(domain.Record) bool) (bool, error) {
	return exists(ctx, s, visitor, f, match)
}

// ListAll implements Store.
func (s *SheetsStore) ListAll(ctx context.Context, f domain.Feature) ([]domain.Record, error) {
	return s.read(ctx, f, func(string) bool { return true })
}

func (s *SheetsStore) read(ctx context.Context, f domain.Feature, keep func(visitor string) bool) ([]domain.Record, error) {
	tab, ok := sheetTabs[f]
	if !ok {
		return nil, domain.ErrUnknownFeature
	}
	rows, err := s.table.ReadAll(ctx, tab)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]
	var out []domain.Record
	for i, row := range rows[1:] {
		if !keep(sheets.Cell(row, colVisitor)) {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, sheets.Cell(row, colTimestamp))
		if err != nil {
			slog.Warn("submission_event", "event", "bad_sheet_row", "tab", tab, "row", i+2, "error", err)
			continue
		}
		r := domain.Record{SubmissionID: sheets.Cell(row, colSubmissionID), Timestamp: ts}
		for c := fixedCols; c < len(header); c++ {
			r.Fields = append(r.Fields, domain.Field{Name: sheets.Cell(header, c), Value: sheets.Cell(row, c)})
		}
		out = append(out, r)
	}
	return out, nil
}
