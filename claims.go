package usecases

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims as seen by downstream
// handlers after the authentication gate ran.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Role() string
	HasAnyRole(roles ...UserRole) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"id,omitempty"`
	Name     string `json:"username,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the display name claim
func (c *JWTClaims) Username() string {
	return c.Name
}

// Role returns the account role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasAnyRole reports whether the claim's role is in the allowed set
func (c *JWTClaims) HasAnyRole(roles ...UserRole) bool {
	return RoleIn(c.UserRole, roles...)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issue time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
