package mailer

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer delivers transactional mail. Sends are best-effort from the
// order flow's perspective: callers log failures and move on.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPMailer builds a Mailer over plain-auth SMTP.
func NewSMTPMailer(host, port, user, pass, from string) Mailer {
	return &smtpMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	message := []byte("To: " + to + "\r\n" +
		"From: " + m.from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, message)
}

// LogMailer is used when no SMTP host is configured; it records the
// send instead of delivering it.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("[MAIL] [INFO] would send to=%s subject=%q", to, subject)
	return nil
}

// OrderConfirmationBody renders the confirmation mail for an order.
func OrderConfirmationBody(orderNumber string, total float64) string {
	return fmt.Sprintf(
		"Thank you for your order!\r\n\r\nOrder number: %s\r\nTotal: %.2f\r\n\r\nWe are baking it now.",
		orderNumber, total,
	)
}
