package domain

import "time"

// Message is a single chat message. ParentMessageID is set for thread
// replies and nil for top-level messages.
type Message struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	WorkspaceID     string    `bson:"workspaceId" json:"workspace_id"`
	ChannelID       string    `bson:"channelId" json:"channel_id"`
	UserID          string    `bson:"userId" json:"user_id"`
	ParentMessageID *string   `bson:"parentMessageId" json:"parent_message_id,omitempty"`
	Body            string    `bson:"body" json:"body"`
	CreatedAt       time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updated_at"`
}
