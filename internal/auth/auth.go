// Package auth verifies caller credentials: user bearer tokens and the cron secret.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huangsam/pagepulse/internal/contract"
	"github.com/huangsam/pagepulse/schema"
)

// Leeway tolerates clock skew between the identity provider and this host.
const Leeway = 30 * time.Second

// Verifier validates HS256 bearer tokens issued by the identity provider.
// The token subject is the user ID.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

var _ contract.Identity = &Verifier{} // Compile-time check

// NewVerifier creates a verifier for tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses token and returns the user it identifies.
func (v *Verifier) Verify(token string) (schema.User, error) {
	if len(v.secret) == 0 {
		return schema.User{}, schema.NewError(schema.KindUnauthorized, "token verification is not configured")
	}
	if token == "" {
		return schema.User{}, schema.NewError(schema.KindUnauthorized, "missing bearer token")
	}

	keyFn := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, keyFn,
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithLeeway(Leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return schema.User{}, schema.WrapError(schema.KindUnauthorized, "invalid bearer token", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return schema.User{}, schema.NewError(schema.KindUnauthorized, "token has no subject")
	}
	return schema.User{ID: claims.Subject}, nil
}

// Authenticate implements contract.Identity.
func (v *Verifier) Authenticate(token string) (schema.User, error) {
	return v.Verify(token)
}

// Sign issues a token for userID valid for ttl. Used by tests and local tooling.
func Sign(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// CheckCronSecret compares an Authorization header against "Bearer <secret>"
// in constant time. An empty secret never matches.
func CheckCronSecret(header, secret string) error {
	if secret == "" {
		return schema.NewError(schema.KindUnauthorized, "cron secret is not configured")
	}
	want := []byte("Bearer " + secret)
	if subtle.ConstantTimeCompare([]byte(header), want) != 1 {
		return schema.NewError(schema.KindUnauthorized, "invalid cron credential")
	}
	return nil
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user schema.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user in ctx.
func UserFrom(ctx context.Context) (schema.User, bool) {
	user, ok := ctx.Value(userKey{}).(schema.User)
	return user, ok && user.ID != ""
}
