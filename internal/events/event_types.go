package events

import (
	"time"

	"github.com/spec-kit/teamchat-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMessageCreated EventType = "message_created"
	EventMessageEdited  EventType = "message_edited"
	EventMessageDeleted EventType = "message_deleted"
	EventInviteCreated  EventType = "invite_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	WorkspaceID string      `json:"workspace_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// MessagePayload accompanies the message lifecycle events.
type MessagePayload struct {
	Message domain.Message `json:"message"`
}

// InviteCreatedPayload accompanies EventInviteCreated.
type InviteCreatedPayload struct {
	InviteID      string      `json:"invite_id"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	Token         string      `json:"token"`
	WorkspaceName string      `json:"workspace_name"`
	InviterName   string      `json:"inviter_name"`
}
