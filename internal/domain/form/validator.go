package form

import (
	"net/url"
	"regexp"
	"strings"
)

// Patterns shared by every form.
var (
	EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	PhonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

// Fields holds the submitted values of one form, keyed by field name.
type Fields map[string]string

// FromValues takes the first value of every key.
func FromValues(v url.Values) Fields {
	f := make(Fields, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			f[k] = vals[0]
		}
	}
	return f
}

// Get returns the raw value of a field ("" when absent).
func (f Fields) Get(name string) string {
	return f[name]
}

// Trimmed returns the value with surrounding whitespace removed.
func (f Fields) Trimmed(name string) string {
	return strings.TrimSpace(f[name])
}

// Check inspects one raw field value.
type Check func(value string) bool

// Rule binds a check to a field and the message shown when it fails.
type Rule struct {
	Field   string
	Check   Check
	Message string
}

// Result is the outcome of a validation run.
// When OK is false, Field and Message describe the first failing rule.
type Result struct {
	OK      bool
	Field   string
	Message string
}

// Validator evaluates rules in order and stops at the first failure.
type Validator struct {
	rules []Rule
}

// New builds a validator from an ordered rule list.
func New(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Rules returns a copy of the rule list.
func (v *Validator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

// Validate runs the rules against fields.
// PRE: none
// POST: Returns OK, or the first failing rule's field and message; later rules are not evaluated
func (v *Validator) Validate(fields Fields) Result {
	for _, r := range v.rules {
		if !r.Check(fields.Get(r.Field)) {
			return Result{OK: false, Field: r.Field, Message: r.Message}
		}
	}
	return Result{OK: true}
}

// Required passes when the value is non-blank after trimming.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Selected passes when a select/radio produced any value.
func Selected(value string) bool {
	return value != ""
}

// Checked passes for a ticked checkbox. Browsers omit unticked boxes, so
// any submitted value counts, whatever its text.
func Checked(value string) bool {
	return value != ""
}

// Matches passes when the raw value matches re.
func Matches(re *regexp.Regexp) Check {
	return func(value string) bool {
		return re.MatchString(value)
	}
}

// AnyOf passes when at least one check passes.
func AnyOf(checks ...Check) Check {
	return func(value string) bool {
		for _, c := range checks {
			if c(value) {
				return true
			}
		}
		return false
	}
}
