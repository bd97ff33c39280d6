// Package worker runs background delivery of queued submitter notifications.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/notify"
	"github.com/spec-kit/complaint-portal/internal/observability"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// NotificationWorker drains the notification queue and hands each message to
// the mailer, retrying with exponential backoff a bounded number of times.
type NotificationWorker struct {
	queue          notify.Queue
	mailer         notify.Mailer
	logger         *zap.Logger
	metrics        *observability.Metrics
	workers        int
	maxAttempts    int
	initialBackoff time.Duration
	sendTimeout    time.Duration
}

// NewNotificationWorker builds a worker from notification settings.
func NewNotificationWorker(queue notify.Queue, mailer notify.Mailer, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		queue:          queue,
		mailer:         mailer,
		logger:         logger,
		metrics:        metrics,
		workers:        cfg.Workers,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff(),
		sendTimeout:    cfg.SendTimeout(),
	}
	if w.workers < 1 {
		w.workers = 1
	}
	if w.maxAttempts < 1 {
		w.maxAttempts = 1
	}
	return w
}

// Run blocks until ctx is cancelled. It returns nil on a clean shutdown.
func (w *NotificationWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		id := i
		g.Go(func() error {
			return w.loop(ctx, id)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (w *NotificationWorker) loop(ctx context.Context, id int) error {
	w.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("dequeue notification", zap.Int("worker", id), zap.Error(err))
			if !sleep(ctx, w.initialBackoff) {
				return ctx.Err()
			}
			continue
		}
		w.Deliver(ctx, msg)
	}
}

// Deliver sends one message, retrying failures. A message that still fails
// after the last attempt is logged and dropped.
func (w *NotificationWorker) Deliver(ctx context.Context, msg notify.Message) {
	attempt := 0
	operation := func() error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
		defer cancel()
		err := w.mailer.Send(sendCtx, msg)
		if err != nil && attempt < w.maxAttempts {
			w.metrics.RecordNotification(observability.NotificationRetried)
			w.logger.Warn("notification attempt failed",
				zap.String("message_id", msg.ID),
				zap.String("complaint_id", msg.ComplaintID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.initialBackoff
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(w.maxAttempts-1)), ctx)

	if err := backoff.Retry(operation, retry); err != nil {
		w.metrics.RecordNotification(observability.NotificationDropped)
		w.logger.Error("notification dropped",
			zap.String("message_id", msg.ID),
			zap.String("complaint_id", msg.ComplaintID),
			zap.String("domain", string(msg.Domain)),
			zap.Int("attempts", attempt),
			zap.Error(apperrors.NewNotificationError("notification delivery failed", err)))
		return
	}
	w.metrics.RecordNotification(observability.NotificationDelivered)
	w.logger.Info("notification delivered",
		zap.String("message_id", msg.ID),
		zap.String("complaint_id", msg.ComplaintID),
		zap.String("status", string(msg.Status)))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
