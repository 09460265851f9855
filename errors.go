package usecases

import (
	"strings"

	errors "github.com/goliatone/go-errors"
)

// Rich sentinels carry the category/code the HTTP layer maps to a wire
// status, and the user-facing message the original frontend surfaces
// verbatim.
var (
	// ErrTokenExpired is returned when a token's expiration has passed
	ErrTokenExpired = errors.New("Token inválido.", errors.CategoryAuth).
			WithCode(errors.CodeForbidden).
			WithTextCode("TOKEN_EXPIRED")

	// ErrTokenMalformed covers bad signatures and unparseable tokens
	ErrTokenMalformed = errors.New("Token inválido.", errors.CategoryAuth).
				WithCode(errors.CodeForbidden).
				WithTextCode("TOKEN_MALFORMED")

	// ErrNotAuthenticated is returned when no bearer credential is present
	ErrNotAuthenticated = errors.New("Token não fornecido.", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("NOT_AUTHENTICATED")

	// ErrAccessDenied is returned when the role is outside the allowed set
	ErrAccessDenied = errors.New("Acesso negado.", errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithTextCode("ACCESS_DENIED")

	// ErrNotOwner is returned when an editor edits a use case they did not create
	ErrNotOwner = errors.New("Acesso não autorizado.", errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithTextCode("NOT_OWNER")

	// ErrDuplicateEmail is returned when registering an email already
	// present. The wire code is 400, not 409: the frontend treats every
	// registration failure as a form error.
	ErrDuplicateEmail = errors.New("Usuário já existe.", errors.CategoryConflict).
				WithCode(errors.CodeBadRequest).
				WithTextCode("DUPLICATE_EMAIL")

	// ErrUserNotFound is returned for lookups on absent accounts
	ErrUserNotFound = errors.New("Usuário não encontrado.", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode("USER_NOT_FOUND")

	// ErrNotActivated blocks login until the activation code is redeemed
	ErrNotActivated = errors.New("Usuário não ativado. Verifique seu e-mail.", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("NOT_ACTIVATED")

	// ErrBadPassword is returned when the hash comparison fails
	ErrBadPassword = errors.New("Senha incorreta.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("BAD_PASSWORD")

	// ErrInvalidActivationCode is returned when no code row matches
	ErrInvalidActivationCode = errors.New("Código de ativação inválido!", errors.CategoryValidation).
					WithCode(errors.CodeBadRequest).
					WithTextCode("INVALID_ACTIVATION_CODE")

	// ErrUseCaseNotFound is returned for lookups on absent use cases
	ErrUseCaseNotFound = errors.New("Caso de uso não encontrado.", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithTextCode("USECASE_NOT_FOUND")

	// ErrInvalidRole rejects role values outside the closed set
	ErrInvalidRole = errors.New("Papel inválido.", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("INVALID_ROLE")

	// ErrMismatchedHashAndPassword wraps the bcrypt mismatch
	ErrMismatchedHashAndPassword = errors.New("hash does not match password", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized)

	// ErrNoEmptyString rejects empty passwords before hashing
	ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest)
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenExpired.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for unusable tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenMalformed.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
