package dto

import (
	"time"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// RegisterRequest - тело запроса на регистрацию
type RegisterRequest struct {
	Username        string `json:"username"`
	Nickname        string `json:"nickname"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest - тело запроса на вход
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse - публичный профиль пользователя
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Nickname   string    `json:"nickname"`
	TotalScore int64     `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginResponse - ответ на успешный вход
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"` // секунды
	User        *UserResponse `json:"user"`
}

// LeaderboardEntryDTO представляет одного игрока в лидерборде
type LeaderboardEntryDTO struct {
	Rank       int    `json:"rank"`        // Место в рейтинге, начиная с 1
	UserID     uint   `json:"user_id"`     // ID пользователя
	Nickname   string `json:"nickname"`    // Публичное имя
	TotalScore int64  `json:"total_score"` // Накопленный счет
}

// LeaderboardResponse - ответ лидерборда
type LeaderboardResponse struct {
	Players []*LeaderboardEntryDTO `json:"players"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Nickname:   u.Nickname,
		TotalScore: u.TotalScore,
		CreatedAt:  u.CreatedAt,
	}
}
