package domain

import "time"

// Role is a workspace authorization role. Roles form a total order:
// member < admin < owner.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// Rank returns the role's position in the total order, or 0 for an
// unknown role.
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return roleRank[r] > 0
}

// Membership links a user to a workspace with a role. The persistent
// store enforces one membership per (workspace, user) pair.
type Membership struct {
	ID          string    `bson:"_id,omitempty"`
	WorkspaceID string    `bson:"workspaceId"`
	UserID      string    `bson:"userId"`
	Role        Role      `bson:"role"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}
