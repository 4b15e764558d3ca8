package auth

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleLawyer     Role = "lawyer"
	RoleUser       Role = "user"
)

// ErrInvalidRole is returned when a role name is outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole validates a role name at the input boundary. Empty defaults to user.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleLawyer:
		return RoleLawyer, nil
	case RoleUser, "":
		return RoleUser, nil
	default:
		return "", ErrInvalidRole
	}
}

// OneOf reports whether the role is in the allowed set.
func (r Role) OneOf(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// CanModerate reports whether the role may approve or reject resources.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}
