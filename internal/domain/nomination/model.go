package nomination

import (
	"strings"

	"ukccu/internal/domain/form"
	"ukccu/internal/domain/submission"
)

// Form field names.
const (
	FieldPosition                = "position"
	FieldNomineeFullName         = "nominee_full_name"
	FieldVoterFullName           = "voter_full_name"
	FieldVoterRegistrationNumber = "voter_registration_number"
	FieldVoterEmailOrPhone       = "voter_email_or_phone"
	FieldIPHash                  = "ip_hash"
	FieldUserAgent               = "user_agent"
	FieldVoteStatus              = "vote_status"
	FieldRejectionReason         = "rejection_reason"
)

// StatusAccepted is the vote_status written for every stored nomination.
const StatusAccepted = "ACCEPTED"

// User-facing messages.
const (
	MsgDuplicate     = "You have already submitted a nomination for this position."
	MsgSuccess       = "Your nomination has been successfully submitted! Thank you for participating in the UKCCU nominations."
	MsgSaveFailed    = "There was an error submitting your nomination. Please try again."
	MsgClosedDefault = "Nominations are currently closed."
	MsgEnded         = "The nomination period has ended."
	MsgNotYetOpen    = "Nominations have not opened yet."
)

// Position is an executive office members can be nominated or voted for.
type Position struct {
	Key   string
	Label string
}

// Positions lists the executive offices in ballot order.
var Positions = []Position{
	{"chairperson", "Chairperson"},
	{"first_vice_chairperson", "First Vice Chairperson"},
	{"second_vice_chairperson", "Second Vice Chairperson"},
	{"secretary", "Secretary"},
	{"vice_secretary", "Vice Secretary"},
	{"treasurer", "Treasurer"},
	{"outreach_coordinator", "Outreach Coordinator"},
	{"inreach_coordinator", "Inreach Coordinator"},
	{"bible_study_coordinator", "Bible Study Coordinator"},
	{"prayer_coordinator", "Prayer Coordinator"},
	{"worship_coordinator", "Worship Coordinator"},
	{"creative_ministries_coordinator", "Creative Ministries Coordinator"},
	{"resource_mobilization_coordinator", "Resource Mobilization Coordinator"},
}

// IsPosition reports whether key names a known office.
func IsPosition(key string) bool {
	for _, p := range Positions {
		if p.Key == key {
			return true
		}
	}
	return false
}

// HumanizeKey turns "first_vice_chairperson" into "first vice chairperson".
func HumanizeKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Validator returns the ordered rule set for the nomination form.
func Validator() *form.Validator {
	return form.New(
		form.Rule{Field: FieldPosition, Check: form.Selected, Message: "Please select a position to nominate for."},
		form.Rule{Field: FieldPosition, Check: IsPosition, Message: "Please select a position to nominate for."},
		form.Rule{Field: FieldNomineeFullName, Check: form.Required, Message: "Please enter the nominee's full name."},
		form.Rule{Field: FieldVoterFullName, Check: form.Required, Message: "Please enter your full name."},
		form.Rule{Field: FieldVoterEmailOrPhone, Check: form.Required, Message: "Please enter your email or phone number."},
		form.Rule{
			Field:   FieldVoterEmailOrPhone,
			Check:   form.AnyOf(form.Matches(form.EmailPattern), form.Matches(form.PhonePattern)),
			Message: "Please enter a valid email address or phone number.",
		},
	)
}

// Nomination is a validated nomination.
type Nomination struct {
	Position                string
	NomineeFullName         string
	VoterFullName           string
	VoterRegistrationNumber string
	VoterEmailOrPhone       string
}

// FromFields reads a nomination from already-validated fields.
func FromFields(f form.Fields) Nomination {
	return Nomination{
		Position:                f.Get(FieldPosition),
		NomineeFullName:         f.Get(FieldNomineeFullName),
		VoterFullName:           f.Get(FieldVoterFullName),
		VoterRegistrationNumber: f.Get(FieldVoterRegistrationNumber),
		VoterEmailOrPhone:       f.Get(FieldVoterEmailOrPhone),
	}
}

// DuplicateKey is the marker key written after a nomination is stored.
// One marker exists per (position, voter contact) pair.
func (n Nomination) DuplicateKey() string {
	return "nomination_" + n.Position + "_" + n.VoterEmailOrPhone
}

// Fields returns the persisted field list, including the audit columns.
func (n Nomination) Fields(ipHash, userAgent string) []submission.Field {
	return []submission.Field{
		{Name: FieldPosition, Value: n.Position},
		{Name: FieldNomineeFullName, Value: n.NomineeFullName},
		{Name: FieldVoterFullName, Value: n.VoterFullName},
		{Name: FieldVoterRegistrationNumber, Value: n.VoterRegistrationNumber},
		{Name: FieldVoterEmailOrPhone, Value: n.VoterEmailOrPhone},
		{Name: FieldIPHash, Value: ipHash},
		{Name: FieldUserAgent, Value: userAgent},
		{Name: FieldVoteStatus, Value: StatusAccepted},
		{Name: FieldRejectionReason, Value: ""},
	}
}
