package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-academy/internal/domain/repository"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей в Redis
	KeyPrefix string
}

// StrictAuthRateLimitConfig - строгий лимит для login/register (защита от brute-force)
func StrictAuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 5,               // 5 попыток
		Window:      1 * time.Minute, // за 1 минуту
		KeyPrefix:   "rl:auth:strict",
	}
}

// QuizRateLimitConfig ограничивает частоту ответов на вопросы
func QuizRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 60,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:quiz",
	}
}

// WeatherRateLimitConfig защищает квоту внешнего API погоды
func WeatherRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 30,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:weather",
	}
}

// RateLimiter создаёт middleware для rate limiting на основе счетчиков в кеше
type RateLimiter struct {
	counters repository.CacheRepository
}

// NewRateLimiter создает новый RateLimiter. При nil counters лимиты не применяются.
func NewRateLimiter(counters repository.CacheRepository) *RateLimiter {
	return &RateLimiter{counters: counters}
}

// Limit возвращает Gin middleware с заданной конфигурацией.
// Ключ формируется из IP + шаблона маршрута.
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.counters == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		path := c.FullPath() // Gin route pattern, e.g. "/api/auth/login"
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.counters.Increment(ctx, key)
		if err != nil {
			// При ошибке Redis пропускаем запрос (fail-open), но логируем
			log.Printf("[RateLimiter] Redis error for key %s: %v. Allowing request (fail-open).", key, err)
			c.Next()
			return
		}

		// Если это первый запрос в окне - устанавливаем TTL
		if count == 1 {
			if err := rl.counters.Expire(ctx, key, cfg.Window); err != nil {
				log.Printf("[RateLimiter] Failed to set TTL for key %s: %v", key, err)
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		ttl := rl.ensureTTL(ctx, key, cfg.Window)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = int(cfg.Window.Seconds())
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

		if int(count) > cfg.MaxRequests {
			log.Printf("[RateLimiter] Rate limit exceeded for IP=%s path=%s. Count=%d, Limit=%d",
				clientIP, path, count, cfg.MaxRequests)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// ensureTTL возвращает оставшееся время окна и восстанавливает TTL счетчика,
// если ключ остался без срока жизни (например, Expire при первом запросе не прошел).
// Если восстановить TTL не удалось, счетчик удаляется, чтобы IP не был заблокирован навсегда.
func (rl *RateLimiter) ensureTTL(ctx context.Context, key string, window time.Duration) time.Duration {
	ttl, err := rl.counters.TTL(ctx, key)
	if err != nil {
		log.Printf("[RateLimiter] Failed to read TTL for key %s: %v", key, err)
		return 0
	}
	if ttl >= 0 {
		return ttl
	}

	// -1: ключ существует без срока жизни
	log.Printf("[RateLimiter] Key %s has no TTL, restoring window %s", key, window)
	if err := rl.counters.Expire(ctx, key, window); err != nil {
		log.Printf("[RateLimiter] Failed to restore TTL for key %s: %v. Deleting counter.", key, err)
		if delErr := rl.counters.Delete(ctx, key); delErr != nil {
			log.Printf("[RateLimiter] Failed to delete counter %s: %v", key, delErr)
		}
		return 0
	}
	return window
}
