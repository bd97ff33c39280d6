package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Submitter holds the immutable details entered by the person complaining.
type Submitter struct {
	Name          string
	RollNumber    string
	Stream        string
	Phone         string
	Email         string
	ComplaintText string
	// LabNumber is set only for lab complaints.
	LabNumber *string
}

// StatusChange is an append-only history entry.
type StatusChange struct {
	Status    ComplaintStatus
	ChangedAt time.Time
}

// Complaint is the aggregate moved through the status lifecycle.
type Complaint struct {
	ID             string
	Domain         Domain
	Submitter      Submitter
	Attachment     []byte
	AttachmentType string
	Status         ComplaintStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StatusHistory  []StatusChange
}

// NewComplaint builds a pending complaint whose history starts at now.
func NewComplaint(id string, d Domain, submitter Submitter, attachment []byte, attachmentType string, now time.Time) *Complaint {
	return &Complaint{
		ID:             id,
		Domain:         d,
		Submitter:      submitter,
		Attachment:     attachment,
		AttachmentType: attachmentType,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		StatusHistory:  []StatusChange{{Status: StatusPending, ChangedAt: now}},
	}
}

// Clone returns a deep copy so callers never share slices with a store.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	if c.Attachment != nil {
		out.Attachment = append([]byte(nil), c.Attachment...)
	}
	if c.Submitter.LabNumber != nil {
		lab := *c.Submitter.LabNumber
		out.Submitter.LabNumber = &lab
	}
	out.StatusHistory = append([]StatusChange(nil), c.StatusHistory...)
	return &out
}

// TransitionResult describes the outcome of a committed status change.
type TransitionResult struct {
	Complaint *Complaint
	Previous  ComplaintStatus
	// Applied is false when the committed status already matched the target.
	Applied bool
}
