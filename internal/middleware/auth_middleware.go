package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
	"github.com/yourusername/quiz-academy/pkg/auth"
)

// AccessTokenCookie - имя cookie с access-токеном
const AccessTokenCookie = "access_token"

// Ключи контекста Gin
const (
	ContextUserID = "user_id"
	ContextClaims = "jwt_claims"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth проверяет, аутентифицирован ли пользователь.
// Токен берется из cookie, затем из заголовка Authorization: Bearer.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errType := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": errType})
			return
		}

		claims, err := m.jwtService.ParseToken(c.Request.Context(), token)
		if err != nil {
			errType := "token_invalid"
			if errors.Is(err, apperrors.ErrExpiredToken) {
				errType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errType})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// OptionalAuth выставляет user_id, если передан валидный токен, и никогда не прерывает запрос
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _ := extractToken(c); token != "" {
			if claims, err := m.jwtService.ParseToken(c.Request.Context(), token); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextClaims, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, string) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "token_missing"
	}

	// Проверяем формат заголовка Bearer {token}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format"
	}
	return parts[1], ""
}
