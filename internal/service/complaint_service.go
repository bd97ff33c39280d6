package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/attachment"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// ComplaintService handles public submission and admin reads.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	auth       *AuthService
	codec      *attachment.Codec
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Auth          *AuthService
	Codec         *attachment.Codec
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Clock         func() time.Time
}

// SubmitInput is the submitter's form.
type SubmitInput struct {
	Name          string  `json:"name" validate:"required"`
	RollNumber    string  `json:"roll_number" validate:"required"`
	Stream        string  `json:"stream" validate:"required"`
	Phone         string  `json:"phone" validate:"min=10"`
	Email         string  `json:"email" validate:"required,email"`
	ComplaintText string  `json:"complaint" validate:"min=10"`
	LabNumber     *string `json:"lab_number"`
	// PhotoBase64 is a data URL or bare base64; lab only.
	PhotoBase64 string `json:"photo_base64"`
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	codec := deps.Codec
	if codec == nil {
		codec = attachment.NewCodec(0)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		auth:       deps.Auth,
		codec:      codec,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        clock,
	}
}

// Submit records a new pending complaint in domain d.
func (s *ComplaintService) Submit(ctx context.Context, d domain.Domain, input SubmitInput) (*domain.Complaint, error) {
	if !d.Valid() {
		return nil, apperrors.NewValidationError("unknown domain", map[string]any{"domain": string(d)})
	}
	input = trimSubmitInput(input)
	if err := validateStruct("invalid complaint", input); err != nil {
		return nil, err
	}

	var (
		raw      []byte
		mimeType string
	)
	switch d {
	case domain.DomainLab:
		if input.LabNumber == nil || *input.LabNumber == "" {
			return nil, apperrors.NewValidationError("invalid complaint", map[string]any{"lab_number": "is required"})
		}
		if input.PhotoBase64 != "" {
			decoded, err := s.codec.Decode(attachment.EncodedBlob(input.PhotoBase64))
			if err != nil {
				return nil, err
			}
			raw = decoded
			mimeType = attachment.DetectType(decoded)
		}
	case domain.DomainICC:
		if input.LabNumber != nil && *input.LabNumber != "" {
			return nil, apperrors.NewValidationError("invalid complaint", map[string]any{"lab_number": "is only accepted for lab complaints"})
		}
		input.LabNumber = nil
		if input.PhotoBase64 != "" {
			return nil, apperrors.NewValidationError("invalid complaint", map[string]any{"photo_base64": "is only accepted for lab complaints"})
		}
	}

	complaint := domain.NewComplaint(uuid.NewString(), d, domain.Submitter{
		Name:          input.Name,
		RollNumber:    input.RollNumber,
		Stream:        input.Stream,
		Phone:         input.Phone,
		Email:         strings.ToLower(input.Email),
		ComplaintText: input.ComplaintText,
		LabNumber:     input.LabNumber,
	}, raw, mimeType, s.now().UTC())

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}
	s.metrics.RecordSubmission(string(d))
	s.logger.Info("complaint submitted",
		zap.String("complaint_id", complaint.ID),
		zap.String("domain", string(d)),
		zap.Bool("has_attachment", len(raw) > 0))

	s.publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		Domain:      d,
		Timestamp:   complaint.CreatedAt,
		Payload:     events.ComplaintSubmittedPayload{HasAttachment: len(raw) > 0},
	})
	return complaint, nil
}

// List returns every complaint of domain d in submission order.
func (s *ComplaintService) List(ctx context.Context, token string, d domain.Domain) ([]domain.Complaint, error) {
	if _, err := s.auth.Authorize(ctx, token, d); err != nil {
		return nil, err
	}
	return s.complaints.List(ctx, d)
}

// Get returns one complaint of domain d with its status history.
func (s *ComplaintService) Get(ctx context.Context, token string, d domain.Domain, id string) (*domain.Complaint, error) {
	if _, err := s.auth.Authorize(ctx, token, d); err != nil {
		return nil, err
	}
	complaint, err := s.complaints.Get(ctx, d, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return complaint, err
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

func trimSubmitInput(in SubmitInput) SubmitInput {
	in.Name = strings.TrimSpace(in.Name)
	in.RollNumber = strings.TrimSpace(in.RollNumber)
	in.Stream = strings.TrimSpace(in.Stream)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.ComplaintText = strings.TrimSpace(in.ComplaintText)
	in.PhotoBase64 = strings.TrimSpace(in.PhotoBase64)
	if in.LabNumber != nil {
		lab := strings.TrimSpace(*in.LabNumber)
		in.LabNumber = &lab
	}
	return in
}
