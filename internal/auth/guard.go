package auth

import (
	"strings"

	"eventportal/internal/apperr"
)

type requirementKind int

const (
	reqAuthenticated requirementKind = iota
	reqAnyRole
	reqOwnerOrRole
)

// Requirement is a declarative access rule evaluated by Authorize.
type Requirement struct {
	kind    requirementKind
	roles   []Role
	ownerID int64
}

// Authenticated requires any active session.
func Authenticated() Requirement {
	return Requirement{kind: reqAuthenticated}
}

// RequireRole requires the session role to be r.
func RequireRole(r Role) Requirement {
	return Requirement{kind: reqAnyRole, roles: []Role{r}}
}

// AnyOfRoles requires the session role to be one of roles.
func AnyOfRoles(roles ...Role) Requirement {
	return Requirement{kind: reqAnyRole, roles: roles}
}

// OwnerOrRole passes when the session user owns the resource or holds r.
func OwnerOrRole(ownerID int64, r Role) Requirement {
	return Requirement{kind: reqOwnerOrRole, roles: []Role{r}, ownerID: ownerID}
}

// Authorize classifies a request: nil allows it, otherwise the returned
// error is apperr.ErrUnauthorized or a Forbidden error naming the reason.
// Every requirement implies an active session.
func Authorize(s *Session, req Requirement) error {
	if s == nil || s.UserID == 0 {
		return apperr.ErrUnauthorized
	}
	switch req.kind {
	case reqAuthenticated:
		return nil
	case reqAnyRole:
		if s.hasAnyRole(req.roles) {
			return nil
		}
		return forbidden("Access denied. " + rolesLabel(req.roles) + " only")
	case reqOwnerOrRole:
		if s.hasAnyRole(req.roles) || s.UserID == req.ownerID {
			return nil
		}
		return forbidden("You can only delete events you created")
	}
	return apperr.ErrForbidden
}

func forbidden(msg string) error {
	return apperr.New(apperr.KindForbidden, apperr.ErrForbidden.Code, msg)
}

func (s *Session) hasAnyRole(roles []Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

func rolesLabel(roles []Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		n := string(r)
		if n != "" {
			n = strings.ToUpper(n[:1]) + n[1:]
		}
		names = append(names, n)
	}
	return strings.Join(names, " or ")
}
