package auth

import "strings"

// Role is the capability class a user acts under.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

const (
	adminEmail    = "admin@svkm.ac.in"
	studentDomain = "@svkmmumbai.onmicrosoft.com"
	facultyDomain = "@svkm.ac.in"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// ResolveRole maps an email address to its role. The admin address also
// carries the faculty suffix, so it must be matched first.
func ResolveRole(email string) (Role, bool) {
	switch {
	case email == adminEmail:
		return RoleAdmin, true
	case strings.HasSuffix(email, studentDomain):
		return RoleStudent, true
	case strings.HasSuffix(email, facultyDomain):
		return RoleFaculty, true
	}
	return "", false
}
