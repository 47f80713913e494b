package user

import (
	"fmt"
	"strings"
)

// Role is the closed enumeration of account roles. Role strings are stored
// and transported uppercase; ParseRole is the only way free-form input
// becomes a Role, so unknown or oddly-cased values never slip past a boundary.
type Role string

const (
	RoleAnonymous     Role = "ANONYMOUS"
	RoleAuthenticated Role = "AUTHENTICATED"
	RoleManager       Role = "MANAGER"
	RoleAdmin         Role = "ADMIN"
)

// ParseRole canonicalizes a role string. It fails on anything outside the
// four recognized values.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAnonymous:
		return RoleAnonymous, nil
	case RoleAuthenticated:
		return RoleAuthenticated, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports exact set membership. There is no role hierarchy: ADMIN passes
// a check only when the set names ADMIN.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
