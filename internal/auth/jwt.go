package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandevgo/syllabot/internal/core"
)

// Verifier validates HS256 access tokens of the shape Supabase issues and
// maps their subject to an identity.
type Verifier struct {
	secret   []byte
	audience string
}

type claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func NewVerifier(secret, audience string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Verifier{secret: []byte(secret), audience: audience}, nil
}

// Verify accepts either a bare token or a full "Bearer <token>" header value.
func (v *Verifier) Verify(credential string) (core.Identity, error) {
	token, ok := BearerToken(credential)
	if !ok {
		token = credential
	}
	if token == "" {
		return core.Identity{}, core.Unauthenticated("missing credential")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return core.Identity{}, core.Wrap(core.ErrUnauthenticated, "Authentication failed", err)
	}
	if c.Subject == "" {
		return core.Identity{}, core.Unauthenticated("token has no subject")
	}
	return core.Identity{ID: c.Subject, Email: c.Email}, nil
}

// Sign issues a token for subject. Used by the token command and tests.
func (v *Verifier) Sign(subject, email string, c jwt.RegisteredClaims) (string, error) {
	c.Subject = subject
	if v.audience != "" && len(c.Audience) == 0 {
		c.Audience = jwt.ClaimStrings{v.audience}
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Email: email, Role: "authenticated", RegisteredClaims: c})
	s, err := t.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}
