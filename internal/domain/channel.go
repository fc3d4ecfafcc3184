package domain

import "time"

// Channel is a named message stream inside a workspace. Names are
// unique per workspace.
type Channel struct {
	ID          string    `bson:"_id,omitempty"`
	WorkspaceID string    `bson:"workspaceId"`
	Name        string    `bson:"name"`
	CreatedBy   string    `bson:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}
