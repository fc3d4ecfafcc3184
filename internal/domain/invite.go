package domain

import "time"

// InviteStatus tracks delivery and acceptance of an invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusSent     InviteStatus = "sent"
	InviteStatusFailed   InviteStatus = "failed"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Invite is a pending offer to join a workspace, addressed to an email
// and redeemed with its token.
type Invite struct {
	ID          string       `bson:"_id,omitempty"`
	WorkspaceID string       `bson:"workspaceId"`
	InviterID   string       `bson:"inviterId"`
	Email       string       `bson:"email"`
	Role        Role         `bson:"role"`
	Token       string       `bson:"token"`
	Accepted    bool         `bson:"accepted"`
	Status      InviteStatus `bson:"status"`
	SendCount   int          `bson:"sendCount"`
	LastSentAt  *time.Time   `bson:"lastSentAt,omitempty"`
	CreatedAt   time.Time    `bson:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt"`
}
