// Package csrf protects form submissions against cross-site request forgery.
//
// Every form carries a signed token whose ID must match a nonce stored in a
// cookie. The signature key is the process-wide secret, so tokens survive
// restarts as long as the secret is stable.
package csrf

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the nonce cookie.
	CookieName = "cafe_csrf"
	// FieldName is the form field carrying the signed token.
	FieldName = "csrf_token"
	// HeaderName is checked when the form field is absent.
	HeaderName = "X-CSRF-Token"

	subject = "csrf"
)

// ErrInvalidToken is returned when a submission's token does not verify.
var ErrInvalidToken = errors.New("invalid csrf token")

// Protector issues and verifies CSRF tokens.
type Protector struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Protector. The secret must not be empty.
func New(secret string, ttl time.Duration) (*Protector, error) {
	if secret == "" {
		return nil, errors.New("csrf secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("csrf ttl must be positive, got %s", ttl)
	}
	return &Protector{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a token for embedding in a form, setting the nonce cookie
// if the client does not already have one.
func (p *Protector) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	nonce := ""
	if cookie, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			nonce = cookie.Value
		}
	}
	if nonce == "" {
		nonce = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    nonce,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteStrictMode,
		})
	}

	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        nonce,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, nil
}

// Verify checks the token submitted with r against the nonce cookie.
// The request form must already be parseable.
func (p *Protector) Verify(r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return fmt.Errorf("%w: missing cookie", ErrInvalidToken)
	}

	raw := r.PostFormValue(FieldName)
	if raw == "" {
		raw = r.Header.Get(HeaderName)
	}
	if raw == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID != cookie.Value {
		return fmt.Errorf("%w: token does not match cookie", ErrInvalidToken)
	}
	return nil
}
