package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, неверные учетные данные).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен истек или был отозван.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (например, нарушение уникальности).
	ErrConflict = errors.New("resource state conflict")

	// ErrServiceUnavailable используется, когда внешний сервис не ответил или вернул ошибку.
	ErrServiceUnavailable = errors.New("external service unavailable")

	// ErrConfiguration используется, когда для внешней зависимости не заданы учетные данные.
	ErrConfiguration = errors.New("configuration missing")

	// ErrMalformedResponse используется, когда внешний сервис вернул ответ неожиданной формы.
	ErrMalformedResponse = errors.New("malformed response")
)
