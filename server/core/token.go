package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid reconnect token")

// reconnectClaims carries a player identity across connections. Subject is
// the decimal player id; ID is a random token id.
type reconnectClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies reconnect tokens with HS256.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for id.
func (t *TokenIssuer) Issue(id netconfig.PlayerID) (string, error) {
	now := t.now()
	claims := reconnectClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign reconnect token: %w", err)
	}
	return signed, nil
}

// Verify returns the player id carried by a valid token.
func (t *TokenIssuer) Verify(tokenString string) (netconfig.PlayerID, error) {
	var claims reconnectClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return 0, fmt.Errorf("%w: bad token id: %w", ErrInvalidToken, err)
	}
	return netconfig.PlayerID(id), nil
}
