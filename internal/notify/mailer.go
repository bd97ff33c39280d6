package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Mailer hands a rendered message to whatever actually delivers mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header of outgoing mail.
type Sender struct {
	Email string
	Name  string
}

// String formats the sender as `Name <email>`.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// LogMailer records messages in the log instead of sending them. It is the
// default when no mail collaborator URL is configured.
type LogMailer struct {
	logger *zap.Logger
	from   Sender
}

// NewLogMailer builds a log-only mailer.
func NewLogMailer(logger *zap.Logger, from Sender) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("notification recorded",
		zap.String("message_id", msg.ID),
		zap.String("complaint_id", msg.ComplaintID),
		zap.String("domain", string(msg.Domain)),
		zap.String("from", m.from.String()),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// HTTPMailer posts messages as JSON to an external mail collaborator.
type HTTPMailer struct {
	url     string
	from    Sender
	timeout time.Duration
}

// NewHTTPMailer builds a mailer targeting url.
func NewHTTPMailer(url string, from Sender, timeout time.Duration) *HTTPMailer {
	return &HTTPMailer{url: url, from: from, timeout: timeout}
}

type mailRequest struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	agent := fiber.Post(m.url)
	agent.Timeout(timeout)
	agent.JSON(mailRequest{
		MessageID: msg.ID,
		From:      m.from.String(),
		To:        msg.To,
		Subject:   msg.Subject,
		Body:      msg.Body,
	})
	if err := agent.Parse(); err != nil {
		return err
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("mail collaborator returned %d: %s", code, strings.TrimSpace(string(body)))
	}
	return nil
}

// Disabled reports a missing sender, in which case nothing is sent.
func (s Sender) Disabled() bool {
	return strings.TrimSpace(s.Email) == ""
}
