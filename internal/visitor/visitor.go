package visitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "wheel_visitor"
	DefaultTTL = 365 * 24 * time.Hour
	issuer     = "prizewheel"
)

var ErrInvalidToken = errors.New("invalid visitor token")

type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues and verifies the signed visitor cookie. The subject of the
// token is the visitor id, so ids cannot be forged without the secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSigner(secret string, ttl time.Duration, secure bool) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a token for id.
func (s *Signer) Issue(id string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the visitor id carried by a valid token.
func (s *Signer) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// FromRequest reads the visitor id from the cookie, if valid.
func (s *Signer) FromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	id, err := s.Verify(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

// Ensure returns the visitor id from the request, issuing a new id and
// cookie when there is none or it does not verify.
func (s *Signer) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := s.FromRequest(r); ok {
		return id, nil
	}
	id := uuid.NewString()
	token, err := s.Issue(id, time.Now())
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return id, nil
}

type ctxKey struct{}

// Middleware makes sure every request carries a visitor id in its context.
func (s *Signer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Ensure(w, r)
		if err != nil {
			http.Error(w, "failed to issue visitor", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the visitor id set by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
