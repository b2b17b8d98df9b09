package mailer

import (
	"bytes"
	"html/template"
)

const VerificationSubject = "Verify your email"

var verificationTmpl = template.Must(template.New("verify").Parse(
	`<p>Hello {{.Name}},</p>
<p>Click to verify your email: <a href="{{.Link}}">{{.Link}}</a></p>
`))

// VerificationBody renders the body of the email-verification message.
func VerificationBody(name, link string) (string, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct{ Name, Link string }{name, link})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
