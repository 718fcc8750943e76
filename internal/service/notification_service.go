package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/workflow"
	"github.com/lavideas/kaizen-api/pkg/config"
	"github.com/lavideas/kaizen-api/pkg/jobs"
)

// NotificationService delivers workflow notification events through the
// background queue. Delivery is a structured log line; wiring a real
// channel replaces deliver without touching the publishing side.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService builds the service and its worker queue.
func NewNotificationService(cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Publish enqueues a notification event for asynchronous delivery.
func (s *NotificationService) Publish(ctx context.Context, event workflow.NotificationEffect) error {
	_ = ctx
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Event),
		Payload: event,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(workflow.NotificationEffect)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	recipients := make([]string, len(event.Recipients))
	for i, group := range event.Recipients {
		recipients[i] = string(group)
	}
	s.logger.Info("notification delivered",
		zap.String("event", string(event.Event)),
		zap.String("suggestion_id", event.SuggestionID),
		zap.Strings("recipients", recipients),
	)
	return ctx.Err()
}
