package service

import (
	"fmt"
	"net/url"

	mail "github.com/go-mail/mail/v2"
)

// Mailer sends account emails over SMTP with mandatory STARTTLS.
type Mailer struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	baseURL string
}

func NewMailer(host string, port int, user, pass, from, baseURL string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, baseURL: baseURL}
}

// SendVerificationEmail mails the signup verification link. The link
// target is GET /api/auth/verify?token=<token>.
func (m *Mailer) SendVerificationEmail(toEmail, fullName, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", m.baseURL, url.QueryEscape(token))

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Verify your Study AI Vault email")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nWelcome to Study AI Vault. Verify your email address by opening:\n\n%s\n\nIf you did not sign up, ignore this message.\n",
		fullName, link,
	))

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return d.DialAndSend(msg)
}
