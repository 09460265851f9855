package usecases

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther verifies credentials against the credential store and issues
// tokens for accounts that are active.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator. The token service is
// built from the supplied configuration.
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

// WithTokenService swaps the token service, keeping issued and
// verified tokens under the caller's control.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Info("login attempt for unknown email", "email", email)
			return "", ErrUserNotFound
		}
		s.logger.Error("login identity lookup error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}

	if !user.Active {
		s.logger.Info("login blocked, account not activated", "email", email)
		return "", ErrNotActivated
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("login password mismatch", "email", email)
		return "", ErrBadPassword
	}

	token, err := s.tokenService.Generate(userIdentity{user})
	if err != nil {
		s.logger.Error("login token generation error", "error", err)
		return "", err
	}

	return token, nil
}

// userIdentity adapts a stored User to the Identity claims source
type userIdentity struct {
	user *User
}

func (i userIdentity) ID() string       { return i.user.ID.String() }
func (i userIdentity) Username() string { return i.user.Username }
func (i userIdentity) Role() string     { return i.user.Role }
