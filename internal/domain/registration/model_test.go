package registration_test

import (
	"testing"

	"ukccu/internal/domain/form"
	"ukccu/internal/domain/registration"
	"ukccu/internal/domain/submission"
)

func validFields() form.Fields {
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

// TestValidator_Order walks the rule list, clearing one field at a time.
func TestValidator_Order(t *testing.T) {
	v := registration.Validator()
	if res := v.Validate(validFields()); !res.OK {
		t.Fatalf("expected valid form, got %+v", res)
	}

	tests := []struct {
		field   string
		value   string
		message string
	}{
		{"full_name", "", "Please enter your full name."},
		{"email", "", "Please enter your email address."},
		{"email", "jane", "Please enter a valid email address."},
		{"phone", " ", "Please enter your phone number."},
		{"phone", "07x", "Please enter a valid phone number."},
		{"year_of_study", "", "Please select your year of study."},
		{"course", "", "Please enter your course of study."},
		{"preferred_day", "", "Please select your preferred day."},
		{"preferred_time", "", "Please select your preferred time."},
		{"consent", "", "Please consent to receive communications about Bible study groups."},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			f := validFields()
			f[tt.field] = tt.value
			res := v.Validate(f)
			if res.OK || res.Field != tt.field || res.Message != tt.message {
				t.Errorf("got %+v, want %s/%q", res, tt.field, tt.message)
			}
		})
	}
}

// TestValidator_MultipleInvalidReportsFirst verifies the stop-at-first policy.
func TestValidator_MultipleInvalidReportsFirst(t *testing.T) {
	f := validFields()
	f["course"] = ""
	f["email"] = "bad"
	f["consent"] = ""
	res := registration.Validator().Validate(f)
	if res.Field != "email" {
		t.Errorf("expected email to be reported first, got %s", res.Field)
	}
}

// TestFields stores consent as Yes/No in form order.
func TestFields(t *testing.T) {
	r := registration.FromFields(validFields())
	fields := r.Fields()
	if fields[0].Name != "full_name" || fields[len(fields)-1].Value != "Yes" {
		t.Errorf("unexpected fields %+v", fields)
	}
	r.Consent = false
	if got := r.Fields()[7].Value; got != "No" {
		t.Errorf("consent = %s, want No", got)
	}
}

// TestMatchesPrior matches on email or phone.
func TestMatchesPrior(t *testing.T) {
	r := registration.FromFields(validFields())
	sameEmail := submission.Record{Fields: []submission.Field{{Name: "email", Value: "jane@x.com"}, {Name: "phone", Value: "0700000000"}}}
	samePhone := submission.Record{Fields: []submission.Field{{Name: "email", Value: "other@x.com"}, {Name: "phone", Value: "0712345678"}}}
	neither := submission.Record{Fields: []submission.Field{{Name: "email", Value: "other@x.com"}, {Name: "phone", Value: "0700000000"}}}

	if !r.MatchesPrior(sameEmail) || !r.MatchesPrior(samePhone) {
		t.Error("expected email or phone match to be a duplicate")
	}
	if r.MatchesPrior(neither) {
		t.Error("expected distinct email and phone not to match")
	}
}
