package email

import (
	"bytes"
	"context"
	"html/template"
	"time"
)

// Message is one outbound email.
type Message struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	ReplyTo string
}

// Receipt is the provider's acknowledgement of a message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<p>Hi {{.Name}},</p>
<p>Thank you for registering for UKCCU Bible study. We will contact you soon with more details about your assigned group.</p>
<p>Your preference: {{.Day}} at {{.Time}}.</p>
<p>UKCCU</p>`))

// RegistrationConfirmation builds the email sent after a Bible study sign-up.
// PRE: to is a syntactically valid address
// POST: Returns a message with an escaped HTML body
func RegistrationConfirmation(to, name, day, at string) (Message, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct{ Name, Day, Time string }{name, day, at})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: "Your UKCCU Bible study registration",
		HTML:    buf.String(),
	}, nil
}
