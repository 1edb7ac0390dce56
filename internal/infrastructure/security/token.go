package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acquisitions/users-api/internal/core/domain"
)

// TokenTTL is the fixed validity window of a session token.
const TokenTTL = time.Hour

var errEmptySecret = errors.New("token secret must not be empty")

// tokenClaims is the JWT payload: identity fields plus iat/exp.
type tokenClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService implements ports.TokenService with HS256-signed JWTs.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService returns a token service signing with secret.
func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &JWTService{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *JWTService) TTL() time.Duration { return s.ttl }

func (s *JWTService) Issue(c domain.Claims) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: c.ID,
		Email:  c.Email,
		Role:   string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Verify(token string) (*domain.Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject id", domain.ErrInvalidToken)
	}

	return &domain.Claims{ID: claims.UserID, Email: claims.Email, Role: domain.Role(claims.Role)}, nil
}
