package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// LifecycleEngine moves complaints between statuses on behalf of admins.
// Every pair of statuses is an allowed transition.
type LifecycleEngine struct {
	complaints repository.ComplaintRepository
	auth       *AuthService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the engine.
type LifecycleDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Auth          *AuthService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Clock         func() time.Time
}

// NewLifecycleEngine constructs the engine.
func NewLifecycleEngine(deps LifecycleDependencies) *LifecycleEngine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LifecycleEngine{
		complaints: deps.ComplaintRepo,
		auth:       deps.Auth,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        clock,
	}
}

// Transition sets the status of complaint id in domain d. Setting the
// current status again is a no-op that records nothing and notifies no one.
// Delivery of the resulting notification is not awaited.
func (e *LifecycleEngine) Transition(ctx context.Context, token string, d domain.Domain, id string, newStatus domain.ComplaintStatus) (*domain.Complaint, error) {
	identity, err := e.auth.Authorize(ctx, token, d)
	if err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status":  string(newStatus),
			"allowed": []domain.ComplaintStatus{domain.StatusPending, domain.StatusInProgress, domain.StatusResolved},
		})
	}

	current, err := e.complaints.Get(ctx, d, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	if current.Status == newStatus {
		return current, nil
	}

	res, err := e.complaints.ApplyTransition(ctx, d, id, newStatus, e.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		// A concurrent request committed the same target first.
		return res.Complaint, nil
	}

	e.metrics.RecordTransition(string(d), string(res.Previous), string(newStatus))
	e.logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("domain", string(d)),
		zap.String("admin_id", identity.AdminID),
		zap.String("old_status", string(res.Previous)),
		zap.String("status", string(newStatus)))

	event := events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: id,
		Domain:      d,
		ActorID:     identity.AdminID,
		Timestamp:   res.Complaint.UpdatedAt,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus:      res.Previous,
			NewStatus:      newStatus,
			SubmitterEmail: res.Complaint.Submitter.Email,
			SubmitterName:  res.Complaint.Submitter.Name,
		},
	}
	if e.dispatcher != nil {
		if err := e.dispatcher.Publish(ctx, event); err != nil {
			e.logger.Warn("status change handlers failed",
				zap.String("complaint_id", id),
				zap.Error(err))
		}
	}
	return res.Complaint, nil
}
