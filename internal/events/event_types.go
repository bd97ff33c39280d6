package events

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string        `json:"id"`
	Type        EventType     `json:"type"`
	ComplaintID string        `json:"complaint_id"`
	Domain      domain.Domain `json:"domain"`
	// ActorID is the admin behind the event; empty for public submissions.
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	HasAttachment bool `json:"has_attachment"`
}

// ComplaintStatusChangedPayload carries what the submitter notification needs.
type ComplaintStatusChangedPayload struct {
	OldStatus      domain.ComplaintStatus `json:"old_status"`
	NewStatus      domain.ComplaintStatus `json:"new_status"`
	SubmitterEmail string                 `json:"submitter_email"`
	SubmitterName  string                 `json:"submitter_name"`
}
