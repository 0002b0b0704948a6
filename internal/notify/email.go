package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/gomail.v2"
)

// Sender delivers one email. Implementations may block; the Mailer keeps them
// off the request path.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func LoadSMTPFromEnv() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("MAIL_HOST")),
		Username: strings.TrimSpace(os.Getenv("MAIL_USERNAME")),
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
	}
	port := strings.TrimSpace(os.Getenv("MAIL_PORT"))
	if port == "" {
		cfg.Port = 587
	} else {
		p, err := strconv.Atoi(port)
		if err != nil {
			return SMTPConfig{}, fmt.Errorf("invalid MAIL_PORT: %w", err)
		}
		cfg.Port = p
	}
	if cfg.Host == "" || cfg.From == "" {
		return SMTPConfig{}, errors.New("missing required mail env: MAIL_HOST, MAIL_FROM")
	}
	return cfg, nil
}

// SMTPSender sends via a plain SMTP dialer.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

type email struct {
	to      string
	subject string
	body    string
}

// Mailer queues notification emails and delivers them from a single worker
// goroutine. Delivery is best effort: a full queue or a failed send drops the
// email with a log line and nothing more. A nil Mailer is a valid no-op.
type Mailer struct {
	sender Sender
	queue  chan email
}

const mailQueueSize = 256

func NewMailer(sender Sender) *Mailer {
	m := &Mailer{
		sender: sender,
		queue:  make(chan email, mailQueueSize),
	}
	go m.worker()
	return m
}

func (m *Mailer) worker() {
	for e := range m.queue {
		if err := m.sender.Send(e.to, e.subject, e.body); err != nil {
			slog.Warn("failed to send notification email", "to", e.to, "error", err)
		}
	}
}

// NotifyNewMessage queues a new-message notification for the recipient. Never
// blocks the caller.
func (m *Mailer) NotifyNewMessage(recipient, senderName string, conversationID uint) {
	if m == nil {
		return
	}
	e := email{
		to:      recipient,
		subject: fmt.Sprintf("New message from %s", senderName),
		body: fmt.Sprintf(
			"%s sent you a message in conversation %d. Open the app to read and reply.",
			senderName, conversationID),
	}
	select {
	case m.queue <- e:
	default:
		slog.Warn("mail queue full, dropping notification", "to", recipient)
	}
}
