package ports

import "github.com/acquisitions/users-api/internal/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash fails with domain.ErrHashing when the primitive errors.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hashed. A mismatch is
	// (false, nil); domain.ErrVerification is reserved for primitive failures.
	Verify(plaintext, hashed string) (bool, error)
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(claims domain.Claims) (string, error)
	// Verify fails with domain.ErrInvalidToken for bad signatures, malformed
	// or expired tokens.
	Verify(token string) (*domain.Claims, error)
}
