package auth

import "github.com/spec-kit/teamchat-service/internal/domain"

// RoleAtLeast reports whether actual ranks at or above required under
// the fixed order member < admin < owner. An unknown or empty actual
// role always fails.
func RoleAtLeast(actual, required domain.Role) bool {
	if !actual.Valid() {
		return false
	}
	return actual.Rank() >= required.Rank()
}
