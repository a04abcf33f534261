package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий журнала очков
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Append добавляет запись о начислении очков с текущим временем
func (r *ScoreRepo) Append(ctx context.Context, score *entity.UserScore) error {
	if score.DateTaken.IsZero() {
		score.DateTaken = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(score).Error
}

// SumForUser пересчитывает сумму очков пользователя строго по журналу
func (r *ScoreRepo) SumForUser(ctx context.Context, userID uint) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&entity.UserScore{}).
		Select("COALESCE(SUM(score), 0)").
		Where("user_id = ?", userID).
		Row().
		Scan(&sum)
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// ListByUser возвращает последние записи журнала пользователя (новые первыми)
func (r *ScoreRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]entity.UserScore, error) {
	scores := []entity.UserScore{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_taken DESC, id DESC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
