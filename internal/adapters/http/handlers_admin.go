package web

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"ukccu/internal/application/listutil"
	"ukccu/internal/domain/submission"
)

var submissionSortColumns = []string{"timestamp"}

// handleAdminSubmissions exports every visitor's records for one feature.
// Query: ?q= matches any field value, ?sort=timestamp&dir=desc, ?page=&per_page=.
// The body is a JSON array; paging metadata travels in X-Total-Count, X-Page and X-Total-Pages.
func (s *server) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	feature, err := submission.ParseFeature(r.PathValue("feature"))
	if errors.Is(err, submission.ErrUnknownFeature) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	records, err := s.deps.Submissions.ListAll(r.Context(), feature)
	if err != nil {
		internalError(w, err)
		return
	}

	params := listutil.ParseListParams(r.URL.Query(), submissionSortColumns)
	if params.Search != "" {
		records = slices.DeleteFunc(records, func(rec submission.Record) bool {
			return !recordContains(rec, params.Search)
		})
	}
	if params.Sort == "timestamp" {
		slices.SortStableFunc(records, func(a, b submission.Record) int {
			if params.Dir == "desc" {
				return b.Timestamp.Compare(a.Timestamp)
			}
			return a.Timestamp.Compare(b.Timestamp)
		})
	}

	page := listutil.NewPageInfo(params.Page, params.PerPage, len(records))
	rows := listutil.Window(records, page)
	if rows == nil {
		rows = []submission.Record{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	w.Header().Set("X-Page", strconv.Itoa(page.Page))
	w.Header().Set("X-Total-Pages", strconv.Itoa(page.TotalPages))
	writeJSON(w, http.StatusOK, rows)
}

func recordContains(rec submission.Record, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(rec.SubmissionID), term) {
		return true
	}
	for _, f := range rec.Fields {
		if strings.Contains(strings.ToLower(f.Value), term) {
			return true
		}
	}
	return false
}

// handleAdminPerf serves request and query timings for the last ?minutes (default 60).
func (s *server) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		http.NotFound(w, r)
		return
	}
	minutes := 60
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		minutes = n
	}
	since := s.deps.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, s.deps.Collector.Snapshot(since, 10))
}
