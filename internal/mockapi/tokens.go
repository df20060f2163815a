package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/baysawarr-web/users"
)

type claims struct {
	Role users.RoleType `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for userID that expires after ttl. A negative ttl yields an
// already expired token.
func (s *Server) IssueToken(userID string, ttl time.Duration) (string, error) {
	acc, err := s.users.getByID(userID)
	if err != nil {
		return "", fmt.Errorf("[mockapi IssueToken] %w", err)
	}
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: acc.user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("[mockapi IssueToken] sign: %w", err)
	}
	return signed, nil
}

// parseToken validates signature, issuer and expiry and returns the claims
func (s *Server) parseToken(raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if s.isRevoked(c.ID) {
		return nil, errors.New("token revoked")
	}
	return &c, nil
}
