package docket

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	headerNameReplacer  = strings.NewReplacer(":", "", "\r\n", "", "\n", "", "\r", "")
	headerValueReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// Message is one accepted contact submission.
type Message struct {
	ID         string
	Name       string
	Email      string
	Subject    string
	Body       string
	RemoteIP   string
	ReceivedAt time.Time
}

// Mailer delivers contact messages to the site owner.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is
// used when no SMTP server is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.InfoContext(ctx, "contact message",
		"id", msg.ID,
		"name", msg.Name,
		"email", msg.Email,
		"subject", msg.Subject,
		"length", len(msg.Body),
	)
	return nil
}

// SMTPMailer sends each message over a fresh SMTP connection. Port 465
// uses implicit TLS; other ports use STARTTLS when the server offers it.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string

	// Limiter throttles outgoing mail; Send waits for a token.
	Limiter *rate.Limiter
	Timeout time.Duration
}

// NewSMTPMailer configures a mailer from cfg, throttled to
// cfg.MailPerMin messages per minute.
func NewSMTPMailer(cfg SiteConfig) *SMTPMailer {
	from := cfg.MailFrom
	if from == "" {
		from = cfg.SMTPUsername
	}
	perMin := max(cfg.MailPerMin, 1)
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     from,
		To:       cfg.MailTo,
		Limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), min(perMin, 5)),
		Timeout:  30 * time.Second,
	}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.Limiter != nil {
		if err := m.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("mail throttle: %w", err)
		}
	}
	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(m.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(FormatMessage(m.From, m.To, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp DATA close: %w", err)
	}
	return client.Quit()
}

func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	dialer := &net.Dialer{Timeout: m.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	deadline := time.Now().Add(m.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	tlsConfig := &tls.Config{ServerName: m.Host}
	if m.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}
	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}
	if m.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				client.Close()
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if m.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
			client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	return client, nil
}

// FormatMessage renders msg as an RFC 5322 message. The visitor's address
// goes into Reply-To; header values are stripped of line breaks.
func FormatMessage(from, to string, msg Message) []byte {
	subject := msg.Subject
	if subject == "" {
		subject = "Contact form message from " + msg.Name
	}
	received := msg.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}

	var buf bytes.Buffer
	headers := []string{
		"From", from,
		"To", to,
		"Reply-To", fmt.Sprintf("%s <%s>", msg.Name, msg.Email),
		"Subject", subject,
		"Date", received.Format(time.RFC1123Z),
		"Message-ID", fmt.Sprintf("<%s@docket>", msg.ID),
		"MIME-Version", "1.0",
		"Content-Type", "text/plain; charset=utf-8",
		"Content-Transfer-Encoding", "8bit",
	}
	for i := 0; i+1 < len(headers); i += 2 {
		buf.WriteString(headerNameReplacer.Replace(headers[i]))
		buf.WriteString(": ")
		buf.WriteString(headerValueReplacer.Replace(headers[i+1]))
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}
