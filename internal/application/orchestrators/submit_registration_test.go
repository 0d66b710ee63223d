package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ukccu/internal/domain/form"
	"ukccu/internal/domain/registration"
	"ukccu/internal/domain/submission"
)

func janeDoe() form.Fields {
	return form.Fields{
		"full_name":      "Jane Doe",
		"email":          "jane@x.com",
		"phone":          "0712345678",
		"year_of_study":  "2",
		"course":         "CS",
		"preferred_day":  "Wed",
		"preferred_time": "18:00",
		"consent":        "on",
	}
}

func registrationDeps(store *mockSubmissionStore) SubmitRegistrationDeps {
	return SubmitRegistrationDeps{Store: store, GenerateID: fixedID, Now: fixedNow}
}

// TestExecuteSubmitRegistration_JaneDoe stores once and warns on the resubmit.
func TestExecuteSubmitRegistration_JaneDoe(t *testing.T) {
	ctx := context.Background()
	store := newMockSubmissionStore()
	mail := &recordingSender{}
	deps := registrationDeps(store)
	deps.Email = mail

	out := ExecuteSubmitRegistration(ctx, SubmitRegistrationInput{Visitor: "v1", Fields: janeDoe()}, deps)
	if out.Kind != KindSaved || out.Level != LevelSuccess || out.Message != registration.MsgSuccess || !out.ResetForm {
		t.Fatalf("first submit = %+v", out)
	}
	if !strings.HasPrefix(out.SubmissionID, "BS_1772366400000_") {
		t.Errorf("SubmissionID = %s", out.SubmissionID)
	}
	records := store.list("v1", submission.FeatureBibleStudy)
	if len(records) != 1 || records[0].Get("consent") != "Yes" || records[0].SubmissionID == "" {
		t.Fatalf("records = %+v", records)
	}
	if len(mail.sent) != 1 || mail.sent[0].To[0] != "jane@x.com" {
		t.Errorf("confirmation = %+v", mail.sent)
	}

	again := janeDoe()
	again["phone"] = "0799999999"
	out = ExecuteSubmitRegistration(ctx, SubmitRegistrationInput{Visitor: "v1", Fields: again}, deps)
	if out.Kind != KindDuplicate || out.Level != LevelWarning || out.Message != registration.MsgDuplicate {
		t.Errorf("resubmit = %+v", out)
	}
	if n := len(store.list("v1", submission.FeatureBibleStudy)); n != 1 {
		t.Errorf("expected 1 record after duplicate, got %d", n)
	}
}

// TestExecuteSubmitRegistration_SamePhone is also a duplicate.
func TestExecuteSubmitRegistration_SamePhone(t *testing.T) {
	store := newMockSubmissionStore()
	deps := registrationDeps(store)
	ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: janeDoe()}, deps)

	f := janeDoe()
	f["email"] = "other@x.com"
	out := ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: f}, deps)
	if out.Kind != KindDuplicate {
		t.Errorf("expected duplicate, got %+v", out)
	}

	// Another browser is a different namespace.
	out = ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v2", Fields: janeDoe()}, deps)
	if out.Kind != KindSaved {
		t.Errorf("expected save for new visitor, got %+v", out)
	}
}

// TestExecuteSubmitRegistration_Invalid reports the first failing field.
func TestExecuteSubmitRegistration_Invalid(t *testing.T) {
	store := newMockSubmissionStore()
	f := janeDoe()
	f["email"] = "jane"
	f["course"] = ""
	out := ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: f}, registrationDeps(store))
	if out.Kind != KindInvalid || out.Level != LevelDanger || out.Field != "email" {
		t.Errorf("got %+v", out)
	}
	if store.appends != 0 {
		t.Error("invalid form must not be stored")
	}
}

// TestExecuteSubmitRegistration_Failures maps store errors to banners.
func TestExecuteSubmitRegistration_Failures(t *testing.T) {
	tests := []struct {
		name    string
		store   *mockSubmissionStore
		kind    Kind
		message string
	}{
		{"save failed", &mockSubmissionStore{records: map[string][]submission.Record{}, appendErr: fmt.Errorf("%w: disk full", errSave)}, KindSaveFailed, registration.MsgSaveFailed},
		{"read failed", &mockSubmissionStore{records: map[string][]submission.Record{}, existsErr: errors.New("db gone")}, KindUnexpected, MsgUnexpected},
		{"append other error", &mockSubmissionStore{records: map[string][]submission.Record{}, appendErr: errors.New("corrupt list")}, KindUnexpected, MsgUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: janeDoe()}, registrationDeps(tt.store))
			if out.Kind != tt.kind || out.Message != tt.message || out.Level != LevelDanger {
				t.Errorf("got %+v", out)
			}
			if strings.Contains(out.Message, "disk") || strings.Contains(out.Message, "db gone") {
				t.Error("raw error leaked into banner")
			}
		})
	}
}

// TestExecuteSubmitRegistration_EmailFailureIgnored keeps the success outcome.
func TestExecuteSubmitRegistration_EmailFailureIgnored(t *testing.T) {
	deps := registrationDeps(newMockSubmissionStore())
	deps.Email = &recordingSender{err: errors.New("resend down")}
	out := ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: janeDoe()}, deps)
	if out.Kind != KindSaved {
		t.Errorf("email failure must not change outcome, got %+v", out)
	}
}

// TestExecuteSubmitRegistration_PanicRecovered converts a panic to the generic banner.
func TestExecuteSubmitRegistration_PanicRecovered(t *testing.T) {
	deps := registrationDeps(newMockSubmissionStore())
	deps.GenerateID = func() string { panic("entropy exhausted") }
	out := ExecuteSubmitRegistration(context.Background(), SubmitRegistrationInput{Visitor: "v1", Fields: janeDoe()}, deps)
	if out.Kind != KindUnexpected || out.Message != MsgUnexpected {
		t.Errorf("got %+v", out)
	}
}
