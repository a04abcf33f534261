package repository

import (
	"context"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByNickname(ctx context.Context, nickname string) (*entity.User, error)
	// IncrementScore атомарно увеличивает total_score и возвращает новое значение
	IncrementScore(ctx context.Context, userID uint, points int64) (int64, error)
	Delete(ctx context.Context, userID uint) error
	// GetLeaderboard возвращает пользователей, отсортированных по total_score DESC, created_at ASC, id ASC
	GetLeaderboard(ctx context.Context, limit int) ([]entity.User, error)
}
