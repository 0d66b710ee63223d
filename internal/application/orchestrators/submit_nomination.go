package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ukccu/internal/adapters/iplookup"
	"ukccu/internal/adapters/notify"
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/nomination"
	"ukccu/internal/domain/submission"
	"ukccu/internal/domain/votingstatus"
)

// MarkerStore reads and writes single per-visitor keys.
type MarkerStore interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
}

// NominationStatusMessages are the nomination texts for a rejected status check.
var NominationStatusMessages = StatusMessages{
	ClosedDefault: nomination.MsgClosedDefault,
	NotYetOpen:    nomination.MsgNotYetOpen,
	Ended:         nomination.MsgEnded,
}

// SubmitNominationInput carries one nomination form post.
type SubmitNominationInput struct {
	Visitor   string
	Fields    form.Fields
	UserAgent string
	// ResolveIP is called only once the nomination is about to be stored.
	ResolveIP func(ctx context.Context) iplookup.Result
}

// SubmitNominationDeps holds dependencies for SubmitNomination.
type SubmitNominationDeps struct {
	Store      SubmissionStore
	Markers    MarkerStore
	Status     votingstatus.Source
	Notifier   notify.Notifier // optional
	IPSalt     string
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitNomination validates, checks the window and duplicates, and stores a nomination.
// PRE: input.Visitor is non-empty
// POST: On KindSaved the record is appended and the position/contact marker is set
func ExecuteSubmitNomination(ctx context.Context, input SubmitNominationInput, deps SubmitNominationDeps) Outcome {
	var nom nomination.Nomination

	p := pipeline{
		name:      "nomination",
		feature:   submission.FeatureNominations,
		visitor:   input.Visitor,
		fields:    input.Fields,
		validator: nomination.Validator(),
		status:    statusStep(deps.Status, deps.Now, NominationStatusMessages),
		duplicate: func(ctx context.Context) (*Outcome, error) {
			nom = nomination.FromFields(input.Fields)
			_, found, err := deps.Markers.Get(ctx, input.Visitor, nom.DuplicateKey())
			if err != nil || !found {
				return nil, err
			}
			return &Outcome{Kind: KindDuplicate, Level: LevelWarning, Message: nomination.MsgDuplicate}, nil
		},
		build: func(ctx context.Context) ([]submission.Field, error) {
			ip := iplookup.Unavailable("no resolver")
			if input.ResolveIP != nil {
				ip = input.ResolveIP(ctx)
			}
			return nom.Fields(iplookup.HashIP(ip.Value(), deps.IPSalt), input.UserAgent), nil
		},
		afterSave: func(ctx context.Context, rec submission.Record) {
			if err := deps.Markers.Set(ctx, input.Visitor, nom.DuplicateKey(), rec.SubmissionID); err != nil {
				slog.Error("submission_event", "event", "marker_failed", "submission_id", rec.SubmissionID, "error", err)
			}
			alert(ctx, deps.Notifier, fmt.Sprintf("New nomination for %s: %s (%s)",
				nomination.HumanizeKey(nom.Position), nom.NomineeFullName, rec.SubmissionID))
		},
		successMsg:    nomination.MsgSuccess,
		saveFailedMsg: nomination.MsgSaveFailed,
	}
	return runSubmission(ctx, p, deps.Store, deps.GenerateID, deps.Now)
}

// alert notifies the organisers. Failures are logged only.
func alert(ctx context.Context, n notify.Notifier, text string) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := n.Notify(ctx, text); err != nil {
		slog.Warn("submission_event", "event", "alert_failed", "error", err)
	}
}
