package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	"github.com/yourusername/quiz-academy/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
	"github.com/yourusername/quiz-academy/pkg/auth"
)

// Хеш для сравнения при неизвестном пользователе, чтобы время ответа не выдавало существование логина
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("quiz-academy-dummy-password"), bcrypt.DefaultCost)

// AuthService предоставляет методы для регистрации, входа и удаления аккаунта
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// RegisterInput содержит все данные для регистрации
type RegisterInput struct {
	Username        string
	Nickname        string
	Password        string
	ConfirmPassword string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, jwtService: jwtService}, nil
}

// Register регистрирует нового пользователя.
// Проверки идут по порядку, возвращается первая сработавшая.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Nickname = strings.TrimSpace(input.Nickname)

	if input.Username == "" || input.Nickname == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, ErrMissingField
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if taken, err := s.exists(ctx, s.userRepo.GetByUsername, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateUsername
	}
	if taken, err := s.exists(ctx, s.userRepo.GetByNickname, input.Nickname); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateNickname
	}

	hash, err := entity.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Nickname: input.Nickname,
		Password: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, s.classifyConflict(ctx, input)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService.Register] Зарегистрирован пользователь ID=%d (%s)", user.ID, user.Username)
	return user, nil
}

// classifyConflict определяет, какое из уникальных полей заняли параллельно с нами
func (s *AuthService) classifyConflict(ctx context.Context, input RegisterInput) error {
	if taken, err := s.exists(ctx, s.userRepo.GetByUsername, input.Username); err == nil && taken {
		return ErrDuplicateUsername
	}
	return ErrDuplicateNickname
}

func (s *AuthService) exists(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), value string) (bool, error) {
	_, err := lookup(ctx, value)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check uniqueness: %w", err)
}

// Authenticate проверяет имя пользователя и пароль.
// Неизвестный логин и неверный пароль неразличимы для клиента.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.CheckPassword(password) {
		log.Printf("[AuthService.Authenticate] Неверный пароль для пользователя %s", user.Username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login аутентифицирует пользователя и выпускает access-токен
func (s *AuthService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.Expiration().Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

// Logout отзывает текущий токен
func (s *AuthService) Logout(ctx context.Context, claims *auth.JWTCustomClaims) error {
	return s.jwtService.RevokeToken(ctx, claims)
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount удаляет пользователя вместе с журналом очков
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	log.Printf("[AuthService.DeleteAccount] Аккаунт пользователя ID=%d удален", userID)
	return nil
}
