// Package clientsession decodes a stored bearer token locally so a UI
// can decide which affordances to render. The decode is advisory: the
// signature is never checked here, and nothing in this package is a
// security boundary. The server-side gates remain authoritative.
package clientsession

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the decoded view of a stored token.
type Session struct {
	UserID   string
	Username string
	Role     string
	IssuedAt *time.Time
	Expires  *time.Time
}

// RoleAdmin mirrors the server's role literal. The package carries its
// own copy so a UI binary does not have to link the server package.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "visualizador"
)

var ErrUndecodable = errors.New("clientsession: token could not be decoded")

type tokenClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"id"`
	Name     string `json:"username"`
	UserRole string `json:"role"`
}

// Decode parses the raw token without verifying its signature. A token
// that cannot be parsed is reported as ErrUndecodable and the caller
// treats it the same as no token at all.
func Decode(raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrUndecodable
	}

	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, ErrUndecodable
	}

	s := &Session{
		UserID:   claims.UID,
		Username: claims.Name,
		Role:     claims.UserRole,
	}

	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		s.IssuedAt = &iat
	}

	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		s.Expires = &exp
	}

	return s, nil
}

// Expired reports whether the token's lifetime has lapsed. A session
// without an expiry claim is treated as expired.
func (s *Session) Expired() bool {
	if s == nil || s.Expires == nil {
		return true
	}
	return time.Now().After(*s.Expires)
}

// Active reports whether the session can back protected navigation.
func (s *Session) Active() bool {
	return s != nil && !s.Expired()
}

// IsAdmin branches admin-only affordances. Strictly the admin role:
// editors never see the admin panel.
func (s *Session) IsAdmin() bool {
	return s.Active() && s.Role == RoleAdmin
}

// CanEditUseCases mirrors the server's write gate for rendering create
// and edit affordances.
func (s *Session) CanEditUseCases() bool {
	if !s.Active() {
		return false
	}
	return s.Role == RoleAdmin || s.Role == RoleEditor
}

// Public routes stay reachable without a session.
var publicRoutes = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
	"/activate": true,
}

// AllowRoute decides whether the UI should let navigation proceed to
// path. A nil or expired session is restricted to the public routes;
// admin paths additionally require the admin role.
func (s *Session) AllowRoute(path string) bool {
	if path == "" {
		path = "/"
	}

	if publicRoutes[path] {
		return true
	}

	if !s.Active() {
		return false
	}

	if strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/users") {
		return s.IsAdmin()
	}

	return true
}

// RedirectTarget names the landing route for a denied navigation: an
// active session bounces to the app root, everything else to login.
func (s *Session) RedirectTarget() string {
	if s.Active() {
		return "/"
	}
	return "/login"
}
