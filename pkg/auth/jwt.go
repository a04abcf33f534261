package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// Префикс ключа Redis для отозванных токенов
const revokedTokenKeyPrefix = "jwt:revoked:"

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет access-токены (HS256)
type JWTService struct {
	secret     []byte
	expiration time.Duration
	// revocations может быть nil: тогда выход из системы только удаляет cookie
	revocations repository.CacheRepository
	now         func() time.Time
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, expirationHrs int, revocations repository.CacheRepository) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:      []byte(secret),
		expiration:  time.Duration(expirationHrs) * time.Hour,
		revocations: revocations,
		now:         time.Now,
	}, nil
}

// Expiration возвращает срок жизни выпускаемых токенов
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// GenerateToken создает подписанный токен для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	now := s.now()
	claims := &JWTCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, срок действия и отзыв токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}

	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			log.Printf("[JWT] Токен истек для пользователя ID=%d", claims.UserID)
			return nil, fmt.Errorf("%w: token is expired", apperrors.ErrExpiredToken)
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		// Redis недоступен: не блокируем пользователей
		log.Printf("[JWT] Не удалось проверить отзыв токена %s: %v", claims.ID, err)
	} else if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", apperrors.ErrUnauthorized)
	}

	return claims, nil
}

// RevokeToken отзывает токен до истечения его срока действия
func (s *JWTService) RevokeToken(ctx context.Context, claims *JWTCustomClaims) error {
	if s.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}

	ttl := s.expiration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Set(ctx, revokedTokenKeyPrefix+claims.ID, claims.UserID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	log.Printf("[JWT] Токен %s пользователя ID=%d отозван на %v", claims.ID, claims.UserID, ttl)
	return nil
}

func (s *JWTService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.revocations == nil || jti == "" {
		return false, nil
	}
	return s.revocations.Exists(ctx, revokedTokenKeyPrefix+jti)
}
