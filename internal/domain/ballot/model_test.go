package ballot_test

import (
	"testing"

	"ukccu/internal/domain/ballot"
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/nomination"
)

func fullBallot() form.Fields {
	f := form.Fields{"confirm": "on"}
	for _, p := range nomination.Positions {
		f[ballot.NameField(p.Key)] = "Candidate " + p.Label
		f[ballot.YearField(p.Key)] = "3"
		f[ballot.CourseField(p.Key)] = "Law"
	}
	return f
}

// TestValidator_RuleCount covers three rules per office plus confirmation.
func TestValidator_RuleCount(t *testing.T) {
	rules := ballot.Validator().Rules()
	if len(rules) != 40 {
		t.Fatalf("expected 40 rules, got %d", len(rules))
	}
	if rules[39].Field != "confirm" {
		t.Errorf("confirmation must be evaluated last, got %s", rules[39].Field)
	}
}

// TestValidator_Messages checks the humanized office names.
func TestValidator_Messages(t *testing.T) {
	v := ballot.Validator()
	if res := v.Validate(fullBallot()); !res.OK {
		t.Fatalf("expected valid ballot, got %+v", res)
	}

	tests := []struct {
		field   string
		message string
	}{
		{"chairperson_name", "Please enter a candidate name for chairperson."},
		{"first_vice_chairperson_year", "Please select a year of study for first vice chairperson."},
		{"resource_mobilization_coordinator_course", "Please enter a course for resource mobilization coordinator."},
		{"confirm", "Please confirm that you understand you can only vote once."},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := fullBallot()
			delete(f, tt.field)
			res := v.Validate(f)
			if res.OK || res.Field != tt.field || res.Message != tt.message {
				t.Errorf("got %+v, want %q", res, tt.message)
			}
		})
	}
}

// TestValidator_FirstOfficeWins reports the earliest office on the ballot.
func TestValidator_FirstOfficeWins(t *testing.T) {
	f := fullBallot()
	f["treasurer_name"] = ""
	f["secretary_course"] = "  "
	delete(f, "confirm")
	res := ballot.Validator().Validate(f)
	if res.Field != "secretary_course" {
		t.Errorf("expected secretary_course, got %s", res.Field)
	}
}

// TestFields flattens choices in ballot order.
func TestFields(t *testing.T) {
	b := ballot.FromFields(fullBallot())
	fields := b.Fields()
	if len(fields) != 39 {
		t.Fatalf("expected 39 fields, got %d", len(fields))
	}
	if fields[0].Name != "chairperson_name" || fields[0].Value != "Candidate Chairperson" {
		t.Errorf("unexpected first field %+v", fields[0])
	}
}
