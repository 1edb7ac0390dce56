package domain

// Claims are the identity fields embedded in a session token.
type Claims struct {
	ID    string
	Email string
	Role  Role
}

// Principal is the authenticated identity behind the current request.
type Principal struct {
	ID    string
	Email string
	Role  Role
}

// PrincipalFromClaims converts verified token claims into a principal.
func PrincipalFromClaims(c *Claims) *Principal {
	if c == nil {
		return nil
	}
	return &Principal{ID: c.ID, Email: c.Email, Role: c.Role}
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Is reports whether the principal is the user identified by id.
func (p *Principal) Is(id string) bool {
	return p != nil && p.ID == id
}
