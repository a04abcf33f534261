package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
	"github.com/yourusername/quiz-academy/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *MockUserRepository) {
	t.Helper()
	users := new(MockUserRepository)
	jwtService, err := auth.NewJWTService("test-secret", 1, nil)
	require.NoError(t, err)

	svc, err := NewAuthService(users, jwtService)
	require.NoError(t, err)
	return svc, users
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Nickname:        "Alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func hashedUser(t *testing.T, id uint, username, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: id, Username: username, Nickname: username, Password: string(hash)}
}

// ============================================================================
// Register
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound)
	users.On("GetByNickname", mock.Anything, "Alice").Return(nil, apperrors.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = 1
	}).Return(nil)

	input := validRegisterInput()
	input.Username = "  alice "

	// Act
	user, err := svc.Register(context.Background(), input)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice", user.Username, "Имя пользователя должно обрезаться")
	assert.Zero(t, user.TotalScore)
	users.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *RegisterInput)
		wantErr error
	}{
		{"пустое имя", func(in *RegisterInput) { in.Username = "   " }, ErrMissingField},
		{"пустой никнейм", func(in *RegisterInput) { in.Nickname = "" }, ErrMissingField},
		{"пустой пароль", func(in *RegisterInput) { in.Password = "" }, ErrMissingField},
		{"пустое подтверждение", func(in *RegisterInput) { in.ConfirmPassword = "" }, ErrMissingField},
		{"пароли не совпадают", func(in *RegisterInput) { in.ConfirmPassword = "other" }, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newTestAuthService(t)
			input := validRegisterInput()
			tt.mutate(&input)

			user, err := svc.Register(context.Background(), input)

			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_DuplicateUsernameWins(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(&entity.User{ID: 1}, nil)
	users.On("GetByNickname", mock.Anything, "Alice").Return(&entity.User{ID: 2}, nil)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Equal(t, "duplicate_username", AuthErrorType(err))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateNickname(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound)
	users.On("GetByNickname", mock.Anything, "Alice").Return(&entity.User{ID: 2}, nil)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, ErrDuplicateNickname)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_ConcurrentConflict(t *testing.T) {
	svc, users := newTestAuthService(t)
	// Первая проверка: свободно; после конфликта при вставке логин уже занят
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound).Once()
	users.On("GetByUsername", mock.Anything, "alice").Return(&entity.User{ID: 9}, nil).Once()
	users.On("GetByNickname", mock.Anything, "Alice").Return(nil, apperrors.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAuthService_Register_LookupError(t *testing.T) {
	svc, users := newTestAuthService(t)
	dbErr := errors.New("db down")
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, dbErr)

	_, err := svc.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"обычный пароль", "secret123"},
		{"пароль с префиксом bcrypt", "$2a$hunter2"},
		{"пароль с префиксом $2y$", "$2y$10$notreallyahash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc, users := newTestAuthService(t)
			var stored *entity.User
			users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound).Once()
			users.On("GetByNickname", mock.Anything, "Alice").Return(nil, apperrors.ErrNotFound)
			users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
				stored = args.Get(1).(*entity.User)
				stored.ID = 1
			}).Return(nil)

			input := validRegisterInput()
			input.Password = tt.password
			input.ConfirmPassword = tt.password

			// Act
			_, err := svc.Register(context.Background(), input)
			require.NoError(t, err)
			require.NotNil(t, stored)
			users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
			user, authErr := svc.Authenticate(context.Background(), "alice", tt.password)

			// Assert
			assert.NotEqual(t, tt.password, stored.Password, "Пароль не должен сохраняться открытым текстом")
			require.NoError(t, authErr, "Пользователь должен входить с паролем, указанным при регистрации")
			assert.Equal(t, uint(1), user.ID)
		})
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, apperrors.ErrNotFound)
	users.On("GetByNickname", mock.Anything, "Alice").Return(nil, apperrors.ErrNotFound)

	input := validRegisterInput()
	input.Password = strings.Repeat("x", 73)
	input.ConfirmPassword = input.Password

	_, err := svc.Register(context.Background(), input)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============================================================================
// Authenticate / Login
// ============================================================================

func TestAuthService_Authenticate(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(hashedUser(t, 1, "alice", "secret123"), nil)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	user, err := svc.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "ghost", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "Неизвестный пользователь и неверный пароль неразличимы")
}

func TestAuthService_Login(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(hashedUser(t, 1, "alice", "secret123"), nil)

	resp, err := svc.Login(context.Background(), "alice", "secret123")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := svc.jwtService.ParseToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.NoError(t, svc.Logout(context.Background(), claims))
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.On("Delete", mock.Anything, uint(1)).Return(nil)
	users.On("Delete", mock.Anything, uint(2)).Return(apperrors.ErrNotFound)

	assert.NoError(t, svc.DeleteAccount(context.Background(), 1))
	assert.ErrorIs(t, svc.DeleteAccount(context.Background(), 2), apperrors.ErrNotFound)
}

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	_, err := NewAuthService(nil, nil)
	assert.Error(t, err)
}
