package usecases

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes embedded in an issued token
type Identity interface {
	ID() string
	Username() string
	Role() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
}

// Mailer delivers outbound mail. Implementations are best-effort
// collaborators: callers never block a request on delivery.
type Mailer interface {
	SendActivationEmail(ctx context.Context, to, code string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] UCM "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] UCM "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] UCM "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] UCM "+newline(format), args...)
}

func newline(format string) string {
	if !strings.HasSuffix(format, "\n") {
		format = format + "\n"
	}
	return format
}
