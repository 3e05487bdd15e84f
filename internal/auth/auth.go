// Package auth resolves the caller principal of a request.
//
// A bearer token signed with the configured HS256 secret wins; its "sub"
// claim is the caller. Without a token, an explicit caller header is
// accepted only when the deployment allows it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rzbill/blocklog/internal/config"
)

var (
	// ErrUnauthenticated is returned when no acceptable identity is presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator turns request credentials into a caller name.
type Authenticator struct {
	secret      []byte
	allowHeader bool
}

// New returns an Authenticator for cfg.
func New(cfg config.AuthConfig) *Authenticator {
	a := &Authenticator{allowHeader: cfg.AllowHeaderCaller}
	if cfg.JWTSecret != "" {
		a.secret = []byte(cfg.JWTSecret)
	}
	return a
}

// Caller resolves the principal from an Authorization header value and an
// explicit caller header value. Either may be empty.
func (a *Authenticator) Caller(authorization, headerCaller string) (string, error) {
	if authorization != "" {
		return a.fromBearer(authorization)
	}
	if headerCaller != "" && a.allowHeader {
		return headerCaller, nil
	}
	return "", ErrUnauthenticated
}

func (a *Authenticator) fromBearer(authorization string) (string, error) {
	if a.secret == nil {
		return "", fmt.Errorf("%w: bearer tokens are not enabled", ErrUnauthenticated)
	}
	scheme, tokenString, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrInvalidToken)
	}
	token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}

// Issue signs a token for subject valid for ttl. Used by the CLI and tests.
func (a *Authenticator) Issue(subject string, ttl time.Duration) (string, error) {
	if a.secret == nil {
		return "", errors.New("auth: no signing secret configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

type callerKey struct{}

// WithCaller stores the resolved caller on ctx.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) string {
	s, _ := ctx.Value(callerKey{}).(string)
	return s
}
