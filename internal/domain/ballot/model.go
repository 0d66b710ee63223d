package ballot

import (
	"errors"

	"ukccu/internal/domain/form"
	"ukccu/internal/domain/nomination"
	"ukccu/internal/domain/submission"
)

// ErrAlreadyVoted is returned when the visitor's vote lock is set.
var ErrAlreadyVoted = errors.New("visitor has already voted")

// FieldConfirm is the "I can only vote once" checkbox.
const FieldConfirm = "confirm"

// User-facing messages.
const (
	MsgAlreadyVoted = "You have already cast your vote. Each member may vote only once."
	MsgSuccess      = "Your vote has been successfully submitted! Thank you for participating in the UKCCU executive elections."
	MsgSaveFailed   = "There was an error submitting your vote. Please try again."
	MsgConfirm      = "Please confirm that you understand you can only vote once."
	MsgClosed       = "Voting is currently closed."
	MsgEnded        = "The voting period has ended."
	MsgNotYetOpen   = "Voting has not opened yet."
)

// NameField names the candidate-name input for an office.
func NameField(position string) string {
	return position + "_name"
}

// YearField names the year-of-study select for an office.
func YearField(position string) string {
	return position + "_year"
}

// CourseField names the course input for an office.
func CourseField(position string) string {
	return position + "_course"
}

// Validator returns the ballot rule set: name, year and course for every
// office in ballot order, then the confirmation checkbox.
func Validator() *form.Validator {
	rules := make([]form.Rule, 0, len(nomination.Positions)*3+1)
	for _, p := range nomination.Positions {
		label := nomination.HumanizeKey(p.Key)
		rules = append(rules,
			form.Rule{Field: NameField(p.Key), Check: form.Required, Message: "Please enter a candidate name for " + label + "."},
			form.Rule{Field: YearField(p.Key), Check: form.Selected, Message: "Please select a year of study for " + label + "."},
			form.Rule{Field: CourseField(p.Key), Check: form.Required, Message: "Please enter a course for " + label + "."},
		)
	}
	rules = append(rules, form.Rule{Field: FieldConfirm, Check: form.Checked, Message: MsgConfirm})
	return form.New(rules...)
}

// Choice is the candidate picked for one office.
type Choice struct {
	Position string
	Name     string
	Year     string
	Course   string
}

// Ballot is a complete, validated vote.
type Ballot struct {
	Choices []Choice
}

// FromFields reads a ballot from already-validated fields.
// INVARIANT: Choices follows nomination.Positions order
func FromFields(f form.Fields) Ballot {
	b := Ballot{Choices: make([]Choice, 0, len(nomination.Positions))}
	for _, p := range nomination.Positions {
		b.Choices = append(b.Choices, Choice{
			Position: p.Key,
			Name:     f.Trimmed(NameField(p.Key)),
			Year:     f.Get(YearField(p.Key)),
			Course:   f.Trimmed(CourseField(p.Key)),
		})
	}
	return b
}

// Fields flattens the ballot into the persisted field list.
func (b Ballot) Fields() []submission.Field {
	out := make([]submission.Field, 0, len(b.Choices)*3)
	for _, c := range b.Choices {
		out = append(out,
			submission.Field{Name: NameField(c.Position), Value: c.Name},
			submission.Field{Name: YearField(c.Position), Value: c.Year},
			submission.Field{Name: CourseField(c.Position), Value: c.Course},
		)
	}
	return out
}
