package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"krankmeldung/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// CookieName holds the signed session token in the browser.
const CookieName = "session-token"

// UserLookup returns a nil Benutzer without an error when no account has the
// email.
type UserLookup interface {
	BenutzerByEmail(ctx context.Context, email string) (*model.Benutzer, error)
}

// RevocationList remembers signed-out token ids until they would expire anyway.
type RevocationList interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type Authenticator struct {
	users   UserLookup
	revoked RevocationList
	secret  string
	ttl     time.Duration
}

func NewAuthenticator(users UserLookup, revoked RevocationList, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{users: users, revoked: revoked, secret: secret, ttl: ttl}
}

func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Authorize is the credentials provider: unknown accounts and wrong passwords
// both yield ErrInvalidCredentials.
func (a *Authenticator) Authorize(ctx context.Context, email, password string) (*model.Benutzer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := a.users.BenutzerByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup benutzer: %w", err)
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SignIn authorizes and mints a session token.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (string, *Claims, error) {
	u, err := a.Authorize(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	c := ClaimsFor(u)
	tok, err := MakeToken(c, a.secret, a.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	parsed, err := ParseToken(tok, a.secret)
	if err != nil {
		return "", nil, err
	}
	return tok, parsed, nil
}

// Verify checks signature, expiry and the revocation list.
func (a *Authenticator) Verify(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrBadToken
	}
	c, err := ParseToken(raw, a.secret)
	if err != nil {
		return nil, err
	}
	if a.revoked != nil && c.RegisteredClaims.ID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, c.RegisteredClaims.ID)
		if err != nil {
			return nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return c, nil
}

// SignOut revokes the token id. Unparseable tokens are ignored.
func (a *Authenticator) SignOut(ctx context.Context, raw string) error {
	c, err := ParseToken(raw, a.secret)
	if err != nil || a.revoked == nil {
		return nil
	}
	until := time.Now().Add(a.ttl)
	if c.ExpiresAt != nil {
		until = c.ExpiresAt.Time
	}
	return a.revoked.Revoke(ctx, c.RegisteredClaims.ID, until)
}

// TokenFromRequest reads the session cookie, then an Authorization bearer.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return BearerToken(r.Header.Get("Authorization"))
}

func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SessionFromRequest is the server-side session read used by page guards.
func (a *Authenticator) SessionFromRequest(r *http.Request) (*Claims, bool) {
	if c, ok := FromContext(r.Context()); ok {
		return c, true
	}
	c, err := a.Verify(r.Context(), TokenFromRequest(r))
	if err != nil {
		return nil, false
	}
	return c, true
}
