package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/notify"
	"github.com/spec-kit/complaint-portal/internal/observability"
)

const enqueueTimeout = 2 * time.Second

// NotificationService turns status change events into queued submitter mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	queue      notify.Queue
	logger     *zap.Logger
	metrics    *observability.Metrics
	sender     notify.Sender
	now        func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, queue notify.Queue, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		queue:      queue,
		logger:     logger,
		metrics:    metrics,
		sender:     notify.Sender{Email: cfg.EmailFrom, Name: cfg.FromName},
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintSubmitted, n.handleComplaintSubmitted)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleComplaintSubmitted(_ context.Context, event events.Event) error {
	n.logger.Debug("ComplaintSubmitted",
		zap.String("complaint_id", event.ComplaintID),
		zap.String("domain", string(event.Domain)))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.Dispatch(ctx, event)
	return nil
}

// Dispatch renders the submitter notice for a status change and queues it.
// Failures are logged and never reach the caller.
func (n *NotificationService) Dispatch(ctx context.Context, event events.Event) {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected status change payload", zap.String("complaint_id", event.ComplaintID))
		return
	}
	if n.sender.Disabled() {
		n.metrics.RecordNotification(observability.NotificationSkipped)
		n.logger.Warn("notification skipped: sender email not configured",
			zap.String("complaint_id", event.ComplaintID))
		return
	}
	if payload.SubmitterEmail == "" {
		n.metrics.RecordNotification(observability.NotificationSkipped)
		n.logger.Warn("notification skipped: submitter has no email",
			zap.String("complaint_id", event.ComplaintID))
		return
	}

	msg, err := notify.RenderStatusUpdate(notify.StatusUpdate{
		ComplaintID:   event.ComplaintID,
		Domain:        event.Domain,
		SubmitterName: payload.SubmitterName,
		To:            payload.SubmitterEmail,
		Status:        payload.NewStatus,
	}, n.now().UTC())
	if err != nil {
		n.logger.Error("render notification", zap.String("complaint_id", event.ComplaintID), zap.Error(err))
		return
	}

	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()
	if err := n.queue.Enqueue(enqueueCtx, msg); err != nil {
		n.metrics.RecordNotification(observability.NotificationDropped)
		n.logger.Error("enqueue notification",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return
	}
	n.logger.Debug("notification queued",
		zap.String("complaint_id", event.ComplaintID),
		zap.String("message_id", msg.ID),
		zap.String("status", string(payload.NewStatus)))
}
