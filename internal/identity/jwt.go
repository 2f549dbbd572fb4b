package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accessClaims is the JWT claim set for access tokens. The jti registered
// claim carries the server-side session record id for revocation checks.
type accessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func signAccessToken(sessionID, identityID uuid.UUID, email string, meta Metadata, secret []byte, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			Subject:   identityID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     email,
		Role:      meta.Role,
		FirstName: meta.FirstName,
		LastName:  meta.LastName,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// parseAccessToken validates signature and expiry and returns the claim
// set. Expiry is reported as ErrTokenExpired so callers can distinguish a
// stale session from a forged token.
func parseAccessToken(tokenString string, secret []byte) (*accessClaims, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (c *accessClaims) toClaims() (*Claims, error) {
	identityID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return &Claims{
		IdentityID: identityID,
		Email:      c.Email,
		Role:       c.Role,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
	}, nil
}

func (c *accessClaims) sessionID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}
