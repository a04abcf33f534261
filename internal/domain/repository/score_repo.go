package repository

import (
	"context"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// ScoreRepository - журнал начислений очков (только добавление)
type ScoreRepository interface {
	Append(ctx context.Context, score *entity.UserScore) error
	SumForUser(ctx context.Context, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]entity.UserScore, error)
}
