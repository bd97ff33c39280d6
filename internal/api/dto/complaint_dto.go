package dto

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/attachment"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/service"
)

// ComplaintRequest is the public submission form.
type ComplaintRequest struct {
	Name        string  `json:"name"`
	RollNumber  string  `json:"roll_number"`
	Stream      string  `json:"stream"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Complaint   string  `json:"complaint"`
	LabNumber   *string `json:"lab_number"`
	PhotoBase64 *string `json:"photo_base64"`
}

// ToInput converts the request into service input.
func (r ComplaintRequest) ToInput() service.SubmitInput {
	in := service.SubmitInput{
		Name:          r.Name,
		RollNumber:    r.RollNumber,
		Stream:        r.Stream,
		Phone:         r.Phone,
		Email:         r.Email,
		ComplaintText: r.Complaint,
		LabNumber:     r.LabNumber,
	}
	if r.PhotoBase64 != nil {
		in.PhotoBase64 = *r.PhotoBase64
	}
	return in
}

// StatusUpdateRequest changes a complaint's status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// StatusChangeResponse is one history entry.
type StatusChangeResponse struct {
	Status    domain.ComplaintStatus `json:"status"`
	ChangedAt time.Time              `json:"changed_at"`
}

// ComplaintResponse is the complaint as returned to callers.
type ComplaintResponse struct {
	ID            string                 `json:"id"`
	Domain        domain.Domain          `json:"domain"`
	Name          string                 `json:"name"`
	RollNumber    string                 `json:"roll_number"`
	Stream        string                 `json:"stream"`
	Phone         string                 `json:"phone"`
	Email         string                 `json:"email"`
	Complaint     string                 `json:"complaint"`
	LabNumber     *string                `json:"lab_number,omitempty"`
	PhotoBase64   *string                `json:"photo_base64,omitempty"`
	Status        domain.ComplaintStatus `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	StatusHistory []StatusChangeResponse `json:"status_history,omitempty"`
}

// NewComplaintResponse renders a complaint. The attachment is returned as a
// data URL of its stored type; history is included only when withHistory is set.
func NewComplaintResponse(c *domain.Complaint, withHistory bool) ComplaintResponse {
	resp := ComplaintResponse{
		ID:         c.ID,
		Domain:     c.Domain,
		Name:       c.Submitter.Name,
		RollNumber: c.Submitter.RollNumber,
		Stream:     c.Submitter.Stream,
		Phone:      c.Submitter.Phone,
		Email:      c.Submitter.Email,
		Complaint:  c.Submitter.ComplaintText,
		LabNumber:  c.Submitter.LabNumber,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if len(c.Attachment) > 0 {
		photo := string(attachment.DataURL(c.Attachment, c.AttachmentType))
		resp.PhotoBase64 = &photo
	}
	if withHistory {
		resp.StatusHistory = make([]StatusChangeResponse, 0, len(c.StatusHistory))
		for _, h := range c.StatusHistory {
			resp.StatusHistory = append(resp.StatusHistory, StatusChangeResponse{Status: h.Status, ChangedAt: h.ChangedAt})
		}
	}
	return resp
}

// NewComplaintList renders complaints without history.
func NewComplaintList(complaints []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		out = append(out, NewComplaintResponse(&complaints[i], false))
	}
	return out
}
