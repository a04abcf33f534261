package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-academy/internal/handler/dto"
	"github.com/yourusername/quiz-academy/internal/middleware"
	"github.com/yourusername/quiz-academy/internal/service"
	"github.com/yourusername/quiz-academy/pkg/auth"
)

// Сообщения об ошибках регистрации и входа для клиента
var authErrorMessages = map[string]string{
	"missing_field":       "All fields are required",
	"password_mismatch":   "Passwords do not match",
	"duplicate_username":  "Username already exists",
	"duplicate_nickname":  "Nickname already taken",
	"invalid_credentials": "Invalid username or password",
}

// AuthHandler обрабатывает запросы аутентификации и управления аккаунтом
type AuthHandler struct {
	authService  *service.AuthService
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, jwtService *auth.JWTService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: int(jwtService.Expiration().Seconds()),
		secureCookie: secureCookie,
	}
}

// Register обрабатывает регистрацию пользователя
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "error_type": "invalid_request"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Nickname:        req.Nickname,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": dto.NewUserResponse(user)})
}

// Login обрабатывает вход пользователя
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required", "error_type": "missing_field"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setTokenCookie(c, resp.AccessToken, h.cookieMaxAge)
	c.JSON(http.StatusOK, resp)
}

// Logout отзывает текущий токен и удаляет cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := c.Get(middleware.ContextClaims); ok {
		if err := h.authService.Logout(c.Request.Context(), claims.(*auth.JWTCustomClaims)); err != nil {
			log.Printf("[AuthHandler.Logout] Ошибка отзыва токена: %v", err)
		}
	}

	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe возвращает профиль текущего пользователя
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteMe удаляет аккаунт текущего пользователя вместе с историей очков
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	if claims, ok := c.Get(middleware.ContextClaims); ok {
		if err := h.authService.Logout(c.Request.Context(), claims.(*auth.JWTCustomClaims)); err != nil {
			log.Printf("[AuthHandler.DeleteMe] Ошибка отзыва токена: %v", err)
		}
	}
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}

// handleAuthError отдает стабильный error_type для ошибок регистрации и входа
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	if errType := service.AuthErrorType(err); errType != "" {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": authErrorMessages[errType], "error_type": errType})
		return
	}
	writeAppError(c, "AuthHandler", err)
}
