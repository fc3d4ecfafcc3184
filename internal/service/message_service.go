package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/events"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

const maxMessageBody = 4000

// MessageService coordinates message lifecycle and emits the events the
// realtime layer fans out.
type MessageService struct {
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// MessageDependencies bundles collaborators for MessageService.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// MessageCreateInput describes a new message.
type MessageCreateInput struct {
	WorkspaceID     string
	ChannelID       string
	UserID          string
	ParentMessageID *string
	Body            string
}

// MessageListFilter describes history pagination. Before selects
// messages strictly older than the given time.
type MessageListFilter struct {
	Before *time.Time
	Limit  int
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create persists a message and emits message_created. A thread reply
// must point at a top-level message in the same channel.
func (s *MessageService) Create(ctx context.Context, input MessageCreateInput) (*domain.Message, error) {
	body, err := normalizeBody(input.Body)
	if err != nil {
		return nil, err
	}

	if input.ParentMessageID != nil {
		parent, err := s.messages.GetByID(ctx, *input.ParentMessageID)
		if err != nil {
			return nil, err
		}
		if parent.ChannelID != input.ChannelID {
			return nil, apperrors.NewValidationError("parent message belongs to another channel", nil)
		}
		if parent.ParentMessageID != nil {
			return nil, apperrors.NewValidationError("cannot reply to a thread reply", nil)
		}
	}

	message := &domain.Message{
		WorkspaceID:     input.WorkspaceID,
		ChannelID:       input.ChannelID,
		UserID:          input.UserID,
		ParentMessageID: input.ParentMessageID,
		Body:            body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventMessageCreated, *message)
	return message, nil
}

// List returns channel history, newest first.
func (s *MessageService) List(ctx context.Context, channelID string, filter MessageListFilter) ([]domain.Message, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messages.ListByChannel(ctx, channelID, filter.Before, limit)
}

// Edit replaces the body. Only the author may edit.
func (s *MessageService) Edit(ctx context.Context, actorID, messageID, body string) (*domain.Message, error) {
	body, err := normalizeBody(body)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.UserID != actorID {
		return nil, apperrors.NewForbidden("only the author can edit a message")
	}

	updated, err := s.messages.UpdateBody(ctx, messageID, body)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventMessageEdited, *updated)
	return updated, nil
}

// Delete removes a message. The author may always delete their own;
// admins and owners may delete anyone's.
func (s *MessageService) Delete(ctx context.Context, actorID string, actorRole domain.Role, messageID string) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.UserID != actorID && actorRole.Rank() < domain.RoleAdmin.Rank() {
		return apperrors.NewForbidden("not allowed to delete this message")
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	s.publish(ctx, events.EventMessageDeleted, *message)
	return nil
}

func (s *MessageService) publish(ctx context.Context, eventType events.EventType, message domain.Message) {
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		WorkspaceID: message.WorkspaceID,
		ActorID:     message.UserID,
		Timestamp:   time.Now().UTC(),
		Payload:     events.MessagePayload{Message: message},
	})
	if err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func normalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" || len(body) > maxMessageBody {
		return "", apperrors.NewValidationError("message body must be 1-4000 characters", nil)
	}
	return body, nil
}
