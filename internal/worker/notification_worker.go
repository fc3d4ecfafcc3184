package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/events"
	"github.com/spec-kit/teamchat-service/internal/realtime"
	"github.com/spec-kit/teamchat-service/internal/repository"
	"github.com/spec-kit/teamchat-service/internal/service"
)

// NotificationWorker bridges domain events to their side effects:
// invite emails through the mailer and message fan-out through the
// realtime gate. Both run off the same dispatcher the services
// publish to, so the services stay unaware of delivery concerns.
type NotificationWorker struct {
	mailer  *service.Mailer
	gate    *realtime.Gate
	invites repository.InviteRepository
	logger  *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(mailer *service.Mailer, gate *realtime.Gate, invites repository.InviteRepository, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{mailer: mailer, gate: gate, invites: invites, logger: logger}
}

// Start subscribes the worker's handlers.
func (w *NotificationWorker) Start(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventInviteCreated, w.handleInviteCreated)
	dispatcher.Subscribe(events.EventMessageCreated, w.messageBridge(realtime.MessageCreated))
	dispatcher.Subscribe(events.EventMessageEdited, w.messageBridge(realtime.MessageEdited))
	dispatcher.Subscribe(events.EventMessageDeleted, w.messageBridge(realtime.MessageDeleted))
}

func (w *NotificationWorker) handleInviteCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InviteCreatedPayload)
	if !ok {
		return nil
	}

	status := domain.InviteStatusSent
	if err := w.mailer.SendInvite(ctx, payload); err != nil {
		status = domain.InviteStatusFailed
		w.logger.Warn("invite mail delivery failed",
			zap.String("invite_id", payload.InviteID),
			zap.Error(err))
	}

	if err := w.invites.MarkSendResult(ctx, payload.InviteID, status); err != nil {
		w.logger.Warn("invite send bookkeeping failed",
			zap.String("invite_id", payload.InviteID),
			zap.Error(err))
	}
	return nil
}

func (w *NotificationWorker) messageBridge(wireEvent string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.MessagePayload)
		if !ok {
			return nil
		}
		w.gate.PublishMessage(ctx, wireEvent, payload.Message)
		return nil
	}
}
