package auth

import (
	"context"
	"time"

	"github.com/flexprice/checkout/internal/config"
	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is what the identity provider asserts about a caller
type Claims struct {
	Principal string
	Email     string
}

// Provider verifies identity provider tokens
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type jwtProvider struct {
	secret []byte
	issuer string
}

func NewProvider(cfg *config.Configuration) Provider {
	return &jwtProvider{
		secret: []byte(cfg.Auth.Secret),
		issuer: cfg.Auth.Issuer,
	}
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (p *jwtProvider) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHintf("unexpected signing method: %v", t.Header["alg"]).
				Mark(ierr.ErrUnauthenticated)
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint(ierr.ReauthenticateHint).
			Mark(ierr.ErrUnauthenticated)
	}
	if !parsed.Valid {
		return nil, ierr.NewError("invalid token").
			WithHint(ierr.ReauthenticateHint).
			Mark(ierr.ErrUnauthenticated)
	}
	if p.issuer != "" && !claims.VerifyIssuer(p.issuer, true) {
		return nil, ierr.NewError("unexpected token issuer").
			WithHint(ierr.ReauthenticateHint).
			Mark(ierr.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, ierr.NewError("token missing subject").
			WithHint(ierr.ReauthenticateHint).
			Mark(ierr.ErrUnauthenticated)
	}

	return &Claims{Principal: claims.Subject, Email: claims.Email}, nil
}

// GenerateToken mints an HS256 token the provider accepts, for scripts and tests
func GenerateToken(cfg *config.Configuration, principal string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			Issuer:    cfg.Auth.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.Secret))
}
