package booking

import (
	"regexp"
	"strings"
)

const roleAdmin = "admin"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RoleLabel is the lower-case role projection used by admin listings and login.
func RoleLabel(isAdmin bool) string {
	if isAdmin {
		return roleAdmin
	}
	return "user"
}

// DisplayRole is the capitalised role projection used by the profile endpoint.
func DisplayRole(isAdmin bool) string {
	if isAdmin {
		return "Admin"
	}
	return "User"
}

// IsAdminRole maps a requested role label to the admin flag. Only "admin" grants it.
func IsAdminRole(role string) bool {
	return strings.TrimSpace(role) == roleAdmin
}

// ValidEmail checks the coarse local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
