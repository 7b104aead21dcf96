package domain

import (
	"slices"
	"time"
)

// Role codes carried in tokens.
const (
	RoleAdmin   = "admin"
	RoleService = "service"
)

// Principal is the verified identity behind a token.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether p carries role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// TokenIssuer issues tokens (e.g. JWT) for a subject.
type TokenIssuer interface {
	Issue(subject string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
