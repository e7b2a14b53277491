package service

import "strings"

// Actor identifies the caller of a workflow operation. The identity is
// resolved by the JWT middleware; services re-check the role before any
// staff-only mutation so a mis-wired route cannot bypass authorization.
type Actor struct {
	ID   string
	Role string
}

// IsStaff reports whether the actor may perform reviewer operations.
func (a Actor) IsStaff() bool {
	switch strings.ToLower(strings.TrimSpace(a.Role)) {
	case "staff", "teacher", "admin", "instructor":
		return true
	default:
		return false
	}
}
