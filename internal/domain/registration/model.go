package registration

import (
	"ukccu/internal/domain/form"
	"ukccu/internal/domain/submission"
)

// Form field names.
const (
	FieldFullName      = "full_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldYearOfStudy   = "year_of_study"
	FieldCourse        = "course"
	FieldPreferredDay  = "preferred_day"
	FieldPreferredTime = "preferred_time"
	FieldConsent       = "consent"
)

// User-facing messages.
const (
	MsgDuplicate  = "You have already registered for Bible study. If you need to update your information, please contact us."
	MsgSuccess    = "Thank you for registering for Bible study! We will contact you soon with more details about your assigned group."
	MsgSaveFailed = "There was an error submitting your registration. Please try again."
)

// Validator returns the ordered rule set for the Bible study registration form.
func Validator() *form.Validator {
	return form.New(
		form.Rule{Field: FieldFullName, Check: form.Required, Message: "Please enter your full name."},
		form.Rule{Field: FieldEmail, Check: form.Required, Message: "Please enter your email address."},
		form.Rule{Field: FieldEmail, Check: form.Matches(form.EmailPattern), Message: "Please enter a valid email address."},
		form.Rule{Field: FieldPhone, Check: form.Required, Message: "Please enter your phone number."},
		form.Rule{Field: FieldPhone, Check: form.Matches(form.PhonePattern), Message: "Please enter a valid phone number."},
		form.Rule{Field: FieldYearOfStudy, Check: form.Selected, Message: "Please select your year of study."},
		form.Rule{Field: FieldCourse, Check: form.Required, Message: "Please enter your course of study."},
		form.Rule{Field: FieldPreferredDay, Check: form.Selected, Message: "Please select your preferred day."},
		form.Rule{Field: FieldPreferredTime, Check: form.Selected, Message: "Please select your preferred time."},
		form.Rule{Field: FieldConsent, Check: form.Checked, Message: "Please consent to receive communications about Bible study groups."},
	)
}

// Registration is a validated Bible study sign-up.
type Registration struct {
	FullName      string
	Email         string
	Phone         string
	YearOfStudy   string
	Course        string
	PreferredDay  string
	PreferredTime string
	Consent       bool
}

// FromFields reads a registration from already-validated fields.
func FromFields(f form.Fields) Registration {
	return Registration{
		FullName:      f.Get(FieldFullName),
		Email:         f.Get(FieldEmail),
		Phone:         f.Get(FieldPhone),
		YearOfStudy:   f.Get(FieldYearOfStudy),
		Course:        f.Get(FieldCourse),
		PreferredDay:  f.Get(FieldPreferredDay),
		PreferredTime: f.Get(FieldPreferredTime),
		Consent:       form.Checked(f.Get(FieldConsent)),
	}
}

// Fields returns the persisted field list in form order.
// Consent is stored as "Yes"/"No".
func (r Registration) Fields() []submission.Field {
	consent := "No"
	if r.Consent {
		consent = "Yes"
	}
	return []submission.Field{
		{Name: FieldFullName, Value: r.FullName},
		{Name: FieldEmail, Value: r.Email},
		{Name: FieldPhone, Value: r.Phone},
		{Name: FieldYearOfStudy, Value: r.YearOfStudy},
		{Name: FieldCourse, Value: r.Course},
		{Name: FieldPreferredDay, Value: r.PreferredDay},
		{Name: FieldPreferredTime, Value: r.PreferredTime},
		{Name: FieldConsent, Value: consent},
	}
}

// MatchesPrior reports whether an earlier record shares this registration's
// email or phone. Comparison is exact, as submitted.
func (r Registration) MatchesPrior(prior submission.Record) bool {
	return prior.Get(FieldEmail) == r.Email || prior.Get(FieldPhone) == r.Phone
}
