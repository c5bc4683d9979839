package entities

import (
	"fmt"
	"strings"
)

// Role gates what an actor may do
type Role string

const (
	RoleGuest           Role = "GUEST"
	RoleHost            Role = "HOST"
	RolePropertyManager Role = "PROPERTY_MANAGER"
	RoleAdmin           Role = "ADMIN"
	RoleInvestor        Role = "INVESTOR"
)

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleHost, RolePropertyManager, RoleAdmin, RoleInvestor:
		return true
	}
	return false
}

// Actor is the caller identity taken from the x-user-id and x-user-role headers.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManageProperties reports whether the actor may list and edit properties
func (a Actor) CanManageProperties() bool {
	switch a.Role {
	case RoleHost, RolePropertyManager, RoleAdmin:
		return true
	}
	return false
}

// ManagesListings reports whether list queries should be scoped to the
// actor's own properties rather than the actor's own bookings.
func (a Actor) ManagesListings() bool {
	return a.Role == RoleHost || a.Role == RolePropertyManager
}
