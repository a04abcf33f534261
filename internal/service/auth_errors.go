package service

import (
	"errors"
	"fmt"

	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// Ошибки регистрации и входа. Тексты используются как стабильный error_type в ответах.
var (
	ErrMissingField       = fmt.Errorf("%w: %w", apperrors.ErrValidation, errors.New("missing_field"))
	ErrPasswordMismatch   = fmt.Errorf("%w: %w", apperrors.ErrValidation, errors.New("password_mismatch"))
	ErrDuplicateUsername  = fmt.Errorf("%w: %w", apperrors.ErrValidation, errors.New("duplicate_username"))
	ErrDuplicateNickname  = fmt.Errorf("%w: %w", apperrors.ErrValidation, errors.New("duplicate_nickname"))
	ErrInvalidCredentials = fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, errors.New("invalid_credentials"))
)

// AuthErrorType возвращает машиночитаемый тип ошибки аутентификации
func AuthErrorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, ErrDuplicateNickname):
		return "duplicate_nickname"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return ""
	}
}
