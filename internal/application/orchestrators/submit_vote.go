package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"ukccu/internal/adapters/notify"
	"ukccu/internal/domain/ballot"
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/submission"
	"ukccu/internal/domain/votingstatus"
)

// VoteLock is the one-shot flag per visitor.
type VoteLock interface {
	HasVoted(ctx context.Context, visitor string) (bool, error)
	Lock(ctx context.Context, visitor string, at time.Time) error
	Unlock(ctx context.Context, visitor string) error
}

// VoteStatusMessages are the ballot texts for a rejected status check.
var VoteStatusMessages = StatusMessages{
	ClosedDefault: ballot.MsgClosed,
	NotYetOpen:    ballot.MsgNotYetOpen,
	Ended:         ballot.MsgEnded,
}

// AlreadyVoted is the outcome for a visitor whose vote lock is set.
func AlreadyVoted() Outcome {
	return Outcome{Kind: KindAlreadyVoted, Level: LevelWarning, Message: ballot.MsgAlreadyVoted, DisableForm: true}
}

// SubmitVoteInput carries one ballot form post.
type SubmitVoteInput struct {
	Visitor string
	Fields  form.Fields
}

// SubmitVoteDeps holds dependencies for SubmitVote.
type SubmitVoteDeps struct {
	Store      SubmissionStore
	Lock       VoteLock
	Status     votingstatus.Source
	Notifier   notify.Notifier // optional
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitVote stores a ballot at most once per visitor.
// PRE: input.Visitor is non-empty
// POST: A locked visitor gets KindAlreadyVoted before validation runs and nothing is stored;
// the lock is set before the append, so KindSaved implies the lock is held.
// A failed lock write stores nothing; a failed append releases the lock
func ExecuteSubmitVote(ctx context.Context, input SubmitVoteInput, deps SubmitVoteDeps) Outcome {
	p := pipeline{
		name:      "vote",
		feature:   submission.FeatureVotes,
		visitor:   input.Visitor,
		fields:    input.Fields,
		validator: ballot.Validator(),
		guard: func(ctx context.Context) (*Outcome, error) {
			voted, err := deps.Lock.HasVoted(ctx, input.Visitor)
			if err != nil || !voted {
				return nil, err
			}
			o := AlreadyVoted()
			return &o, nil
		},
		status: statusStep(deps.Status, deps.Now, VoteStatusMessages),
		build: func(context.Context) ([]submission.Field, error) {
			return ballot.FromFields(input.Fields).Fields(), nil
		},
		reserve: func(ctx context.Context, rec submission.Record) error {
			return deps.Lock.Lock(ctx, input.Visitor, rec.Timestamp)
		},
		release: func(ctx context.Context, rec submission.Record) {
			// A failed release leaves the visitor locked without a stored ballot.
			if err := deps.Lock.Unlock(ctx, input.Visitor); err != nil {
				slog.Error("submission_event", "event", "vote_unlock_failed", "submission_id", rec.SubmissionID, "error", err)
			}
		},
		afterSave: func(ctx context.Context, rec submission.Record) {
			alert(ctx, deps.Notifier, "New ballot received: "+rec.SubmissionID)
		},
		successMsg:    ballot.MsgSuccess,
		saveFailedMsg: ballot.MsgSaveFailed,
		lockOnSuccess: true,
	}
	return runSubmission(ctx, p, deps.Store, deps.GenerateID, deps.Now)
}
