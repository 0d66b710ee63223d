package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	submissionStore "ukccu/internal/adapters/storage/submission"
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/submission"
	"ukccu/internal/domain/votingstatus"
)

// Level selects the banner style (alert alert-<level>).
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
	LevelInfo    Level = "info"
)

// Kind classifies how a submission attempt ended.
type Kind string

const (
	KindSaved        Kind = "saved"
	KindInvalid      Kind = "invalid"
	KindClosed       Kind = "closed"
	KindDuplicate    Kind = "duplicate"
	KindAlreadyVoted Kind = "already_voted"
	KindSaveFailed   Kind = "save_failed"
	KindUnexpected   Kind = "unexpected"
)

// MsgUnexpected is shown for any failure that is not the user's to fix.
const MsgUnexpected = "An unexpected error occurred. Please try again later."

// Outcome is the banner and form state produced by one submission attempt.
type Outcome struct {
	Kind         Kind   `json:"kind"`
	Level        Level  `json:"level"`
	Message      string `json:"message"`
	Field        string `json:"field,omitempty"`        // first invalid field, for KindInvalid
	SubmissionID string `json:"submissionId,omitempty"` // set for KindSaved
	ResetForm    bool   `json:"resetForm"`
	DisableForm  bool   `json:"disableForm"`
}

// SubmissionStore is the part of the submission store the flows need.
type SubmissionStore interface {
	Append(ctx context.Context, visitor string, f submission.Feature, r submission.Record) error
	Exists(ctx context.Context, visitor string, f submission.Feature, match func(submission.Record) bool) (bool, error)
}

// step inspects the attempt; a non-nil Outcome stops the pipeline.
type step func(ctx context.Context) (*Outcome, error)

// pipeline describes one form's submission flow.
type pipeline struct {
	name      string
	feature   submission.Feature
	visitor   string
	fields    form.Fields
	validator *form.Validator

	guard     step // before validation
	status    step // after validation
	duplicate step

	build func(ctx context.Context) ([]submission.Field, error)
	// reserve runs before the append; an error aborts with the save-failed banner.
	// release undoes it when the append fails.
	reserve   func(ctx context.Context, rec submission.Record) error
	release   func(ctx context.Context, rec submission.Record)
	afterSave func(ctx context.Context, rec submission.Record) // best-effort side effects

	successMsg    string
	saveFailedMsg string
	lockOnSuccess bool
}

// runSubmission executes guard, validate, status, duplicate, reserve, append
// and side effects in that order.
// PRE: p.validator, p.build are set; store, generateID and now are non-nil
// POST: Always returns an Outcome; panics and internal errors become KindUnexpected
func runSubmission(ctx context.Context, p pipeline, store SubmissionStore, generateID func() string, now func() time.Time) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("submission_event", "event", "panic", "form", p.name, "panic", fmt.Sprint(r))
			out = unexpected()
		}
	}()

	fail := func(stage string, err error) Outcome {
		slog.Error("submission_event", "event", "error", "form", p.name, "stage", stage, "error", err)
		return unexpected()
	}

	if p.guard != nil {
		if o, err := p.guard(ctx); err != nil {
			return fail("guard", err)
		} else if o != nil {
			return *o
		}
	}

	if res := p.validator.Validate(p.fields); !res.OK {
		return Outcome{Kind: KindInvalid, Level: LevelDanger, Message: res.Message, Field: res.Field}
	}

	for _, s := range []struct {
		name string
		fn   step
	}{{"status", p.status}, {"duplicate", p.duplicate}} {
		if s.fn == nil {
			continue
		}
		o, err := s.fn(ctx)
		if err != nil {
			return fail(s.name, err)
		}
		if o != nil {
			slog.Info("submission_event", "event", "rejected", "form", p.name, "kind", string(o.Kind))
			return *o
		}
	}

	fields, err := p.build(ctx)
	if err != nil {
		return fail("build", err)
	}
	ts := now()
	rec := submission.Record{
		SubmissionID: submission.NewID(p.feature, ts, generateID()),
		Timestamp:    ts.UTC(),
		Fields:       fields,
	}

	if p.reserve != nil {
		if err := p.reserve(ctx, rec); err != nil {
			slog.Error("submission_event", "event", "reserve_failed", "form", p.name, "error", err)
			return Outcome{Kind: KindSaveFailed, Level: LevelDanger, Message: p.saveFailedMsg}
		}
	}

	if err := store.Append(ctx, p.visitor, p.feature, rec); err != nil {
		if p.release != nil {
			p.release(ctx, rec)
		}
		if errors.Is(err, submissionStore.ErrSaveFailed) {
			slog.Error("submission_event", "event", "save_failed", "form", p.name, "error", err)
			return Outcome{Kind: KindSaveFailed, Level: LevelDanger, Message: p.saveFailedMsg}
		}
		return fail("append", err)
	}
	slog.Info("submission_event", "event", "saved", "form", p.name, "submission_id", rec.SubmissionID)

	if p.afterSave != nil {
		p.afterSave(ctx, rec)
	}
	return Outcome{
		Kind:         KindSaved,
		Level:        LevelSuccess,
		Message:      p.successMsg,
		SubmissionID: rec.SubmissionID,
		ResetForm:    true,
		DisableForm:  p.lockOnSuccess,
	}
}

func unexpected() Outcome {
	return Outcome{Kind: KindUnexpected, Level: LevelDanger, Message: MsgUnexpected}
}

// StatusMessages are the per-form texts for a rejected status check.
type StatusMessages struct {
	ClosedDefault string
	NotYetOpen    string
	Ended         string
}

// statusOutcome maps a status check failure to its banner.
// It returns nil when the window is open.
func statusOutcome(st votingstatus.Status, now time.Time, msgs StatusMessages) *Outcome {
	var msg string
	switch err := st.Check(now); {
	case err == nil:
		return nil
	case errors.Is(err, votingstatus.ErrClosed):
		msg = st.ClosedMessage(msgs.ClosedDefault)
	case errors.Is(err, votingstatus.ErrNotYetOpen):
		msg = msgs.NotYetOpen
	default:
		msg = msgs.Ended
	}
	return &Outcome{Kind: KindClosed, Level: LevelWarning, Message: msg, DisableForm: true}
}

// statusStep reads the current status at submit time.
func statusStep(src votingstatus.Source, now func() time.Time, msgs StatusMessages) step {
	return func(ctx context.Context) (*Outcome, error) {
		st, err := src.Current(ctx)
		if err != nil {
			return nil, fmt.Errorf("voting status: %w", err)
		}
		return statusOutcome(st, now(), msgs), nil
	}
}

// CheckStatus evaluates the window for page rendering.
// PRE: src is non-nil
// POST: nil when open; a warning Outcome when closed; err when the source failed
func CheckStatus(ctx context.Context, src votingstatus.Source, now time.Time, msgs StatusMessages) (*Outcome, error) {
	st, err := src.Current(ctx)
	if err != nil {
		return nil, err
	}
	return statusOutcome(st, now, msgs), nil
}
