// Package mail delivers transactional email for the authentication core.
package mail

import (
	"bytes"
	"context"
	"html/template"
	"time"
)

// Mailer sends one HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, bodyHTML string) error
}

// VerificationSubject is the subject line of the verification email.
const VerificationSubject = "Verify your email address"

var verificationTemplate = template.Must(template.New("verification").Parse(`<h1>Welcome!</h1>
<p>Your verification code: <strong>{{.Code}}</strong></p>
<p>The code expires in {{.ExpiresInMinutes}} minutes.</p>
`))

// RenderVerificationEmail renders the body of the verification email.
func RenderVerificationEmail(code string, expiresIn time.Duration) (string, error) {
	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, struct {
		Code             string
		ExpiresInMinutes int
	}{Code: code, ExpiresInMinutes: int(expiresIn.Minutes())})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
