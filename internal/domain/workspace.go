package domain

import "time"

// Workspace is the top-level tenant grouping channels and members.
type Workspace struct {
	ID        string    `bson:"_id,omitempty"`
	Name      string    `bson:"name"`
	Slug      string    `bson:"slug"`
	OwnerID   string    `bson:"ownerId"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
