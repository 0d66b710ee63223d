package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"ukccu/internal/adapters/email"
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/registration"
	"ukccu/internal/domain/submission"
)

// SubmitRegistrationInput carries one Bible study form post.
type SubmitRegistrationInput struct {
	Visitor string
	Fields  form.Fields
}

// SubmitRegistrationDeps holds dependencies for SubmitRegistration.
type SubmitRegistrationDeps struct {
	Store      SubmissionStore
	Email      email.Sender // optional
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitRegistration validates, de-duplicates and stores a Bible study registration.
// PRE: input.Visitor is non-empty
// POST: On KindSaved exactly one record was appended to the visitor's list;
// a prior record with the same email or phone yields KindDuplicate and no append
func ExecuteSubmitRegistration(ctx context.Context, input SubmitRegistrationInput, deps SubmitRegistrationDeps) Outcome {
	var reg registration.Registration

	p := pipeline{
		name:      "registration",
		feature:   submission.FeatureBibleStudy,
		visitor:   input.Visitor,
		fields:    input.Fields,
		validator: registration.Validator(),
		duplicate: func(ctx context.Context) (*Outcome, error) {
			reg = registration.FromFields(input.Fields)
			dup, err := deps.Store.Exists(ctx, input.Visitor, submission.FeatureBibleStudy, reg.MatchesPrior)
			if err != nil || !dup {
				return nil, err
			}
			return &Outcome{Kind: KindDuplicate, Level: LevelWarning, Message: registration.MsgDuplicate}, nil
		},
		build: func(context.Context) ([]submission.Field, error) {
			return reg.Fields(), nil
		},
		afterSave: func(ctx context.Context, rec submission.Record) {
			sendConfirmation(ctx, deps.Email, reg, rec.SubmissionID)
		},
		successMsg:    registration.MsgSuccess,
		saveFailedMsg: registration.MsgSaveFailed,
	}
	return runSubmission(ctx, p, deps.Store, deps.GenerateID, deps.Now)
}

// sendConfirmation emails the registrant. Failures are logged only.
func sendConfirmation(ctx context.Context, sender email.Sender, reg registration.Registration, submissionID string) {
	if sender == nil {
		return
	}
	msg, err := email.RegistrationConfirmation(reg.Email, reg.FullName, reg.PreferredDay, reg.PreferredTime)
	if err != nil {
		slog.Error("submission_event", "event", "confirmation_build_failed", "submission_id", submissionID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := sender.Send(ctx, msg); err != nil {
		slog.Warn("submission_event", "event", "confirmation_failed", "submission_id", submissionID, "error", err)
	}
}
