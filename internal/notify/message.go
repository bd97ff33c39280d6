// Package notify holds the submitter notification plumbing: rendered
// messages, the queue between request handlers and workers, and the mailer
// that hands messages to the mail collaborator.
package notify

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// Message is one notification bound for a submitter.
type Message struct {
	ID          string                 `json:"id"`
	ComplaintID string                 `json:"complaint_id"`
	Domain      domain.Domain          `json:"domain"`
	Status      domain.ComplaintStatus `json:"status"`
	To          string                 `json:"to"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	CreatedAt   time.Time              `json:"created_at"`
}

// StatusUpdate is the input for rendering a status change notice.
type StatusUpdate struct {
	ComplaintID   string
	Domain        domain.Domain
	SubmitterName string
	To            string
	Status        domain.ComplaintStatus
}

var statusBody = template.Must(template.New("status").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2>Complaint Status Update</h2>
      <p>Dear {{.Name}},</p>
      <p>Your {{.Kind}} complaint (ID: <strong>{{.ComplaintID}}</strong>) status has been updated to:</p>
      <h3>Status: {{.Status}}</h3>
      <p>Thank you for your patience.</p>
      <hr>
      <p style="font-size: 12px; color: #64748b;">This is an automated message from the Complaint Management System. Please do not reply to this email.</p>
    </div>
  </body>
</html>
`))

// RenderStatusUpdate builds the message sent when a complaint changes status.
func RenderStatusUpdate(update StatusUpdate, now time.Time) (Message, error) {
	var body bytes.Buffer
	err := statusBody.Execute(&body, struct {
		Name        string
		Kind        string
		ComplaintID string
		Status      string
	}{
		Name:        update.SubmitterName,
		Kind:        update.Domain.DisplayName(),
		ComplaintID: update.ComplaintID,
		Status:      strings.ToUpper(strings.ReplaceAll(string(update.Status), "_", " ")),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:          uuid.NewString(),
		ComplaintID: update.ComplaintID,
		Domain:      update.Domain,
		Status:      update.Status,
		To:          update.To,
		Subject:     "Complaint Status Update - " + update.Domain.DisplayName(),
		Body:        body.String(),
		CreatedAt:   now,
	}, nil
}
