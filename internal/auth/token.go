package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator mints and decodes session credentials.
type TokenGenerator interface {
	Issue(user User) (token string, expiresAt time.Time, err error)
	Decode(rawToken string) (*SessionClaims, error)
}

// JWTTokenGenerator issues stateless HS256 session credentials with a fixed
// lifetime. There is no server-side revocation: a credential stays valid
// until it expires, logout is client-side disposal.
type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the generator's clock.
func (g *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	g.now = now
	return g
}

func (g *JWTTokenGenerator) Issue(user User) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.ttl)

	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode fails closed: any parse error, signature mismatch, expiry, or
// implausible claim set yields ErrInvalidCredential, never a default role.
func (g *JWTTokenGenerator) Decode(rawToken string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}
	if claims.UserID <= 0 || claims.Email == "" || !claims.Role.Valid() {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
