// Package auth issues and verifies signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abgdnv/observatory/pkg/config"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// ErrNoSubject is returned for a correctly signed token without a `sub` claim.
var ErrNoSubject = errors.New("token has no subject")

type Verifier interface {
	Verify(ctx context.Context, tokenString string) (jwt.Token, error)
}

type Issuer interface {
	Issue(subject string) (string, error)
}

// HMACTokens signs tokens with HS256. Every issued token carries a fresh `jti`,
// so two logins of the same subject never produce the same string.
type HMACTokens struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewHMACTokens creates a token issuer and verifier from cfg.
func NewHMACTokens(cfg config.TokenConfig) *HMACTokens {
	return &HMACTokens{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue returns a signed compact token for subject.
func (h *HMACTokens) Issue(subject string) (string, error) {
	token, err := jwt.NewBuilder().
		Issuer(h.issuer).
		Subject(subject).
		JwtID(uuid.NewString()).
		IssuedAt(h.now()).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), h.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks signature and issuer of tokenString.
// A valid signature does not mean an active session; callers compare against the stored token.
func (h *HMACTokens) Verify(_ context.Context, tokenString string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), h.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(h.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if _, ok := token.Subject(); !ok {
		return nil, ErrNoSubject
	}
	return token, nil
}
