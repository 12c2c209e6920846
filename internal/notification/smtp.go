package notification

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// SMTPOptions configure the SMTP sender.
type SMTPOptions struct {
	Address  string
	Host     string
	User     string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	opts     SMTPOptions
	auth     smtp.Auth
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPSender creates an SMTP sender. PLAIN auth is used when a user is set.
func NewSMTPSender(opts SMTPOptions) *SMTPSender {
	var auth smtp.Auth
	if opts.User != "" {
		auth = smtp.PlainAuth("", opts.User, opts.Password, opts.Host)
	}
	return &SMTPSender{
		opts:     opts,
		auth:     auth,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
}

// Send delivers one message. It returns early with ctx.Err() if ctx ends first.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := buildMessage(s.opts.From, to, subject, body, s.now())

	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.opts.Address, s.auth, s.opts.From, []string{to}, msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}
}

func buildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + at.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
