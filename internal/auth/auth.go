package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"krankmeldung/internal/model"
)

var (
	ErrBadToken = errors.New("invalid token")
	ErrRevoked  = errors.New("token revoked")
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Claims is the session token payload.
type Claims struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// ClaimsFor shapes the token for an account: id and isAdmin are copied from
// the stored Benutzer so the middleware never needs a database lookup.
func ClaimsFor(u *model.Benutzer) Claims {
	return Claims{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}
}

func MakeToken(c Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	c.Subject = c.ID
	if c.RegisteredClaims.ID == "" {
		c.RegisteredClaims.ID = uuid.NewString()
	}
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.ID == "" {
		return nil, ErrBadToken
	}
	return c, nil
}

type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// Session is what /api/auth/session hands to the browser.
type Session struct {
	User    SessionUser `json:"user"`
	Expires string      `json:"expires"`
}

func (c *Claims) Session() Session {
	s := Session{User: SessionUser{ID: c.ID, Email: c.Email, Name: c.Name, IsAdmin: c.IsAdmin}}
	if c.ExpiresAt != nil {
		s.Expires = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return s
}

type ctxKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}
