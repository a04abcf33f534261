package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: user %q already exists", apperrors.ErrConflict, user.Username)
	}
	return err
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени пользователя
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

// GetByNickname возвращает пользователя по никнейму
func (r *UserRepo) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	return r.getBy(ctx, "nickname = ?", nickname)
}

func (r *UserRepo) getBy(ctx context.Context, cond string, value string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where(cond, value).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// IncrementScore атомарно увеличивает общий счет пользователя и возвращает новое значение.
// Вызывается внутри транзакции, чтобы чтение видело собственное обновление.
func (r *UserRepo) IncrementScore(ctx context.Context, userID uint, points int64) (int64, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_score", gorm.Expr("total_score + ?", points))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.ErrNotFound
	}

	var total int64
	if err := db.Model(&entity.User{}).Select("total_score").Where("id = ?", userID).Row().Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Delete удаляет пользователя вместе с его журналом очков
func (r *UserRepo) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.UserScore{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		log.Printf("[UserRepo.Delete] Пользователь ID=%d удален вместе с журналом очков", userID)
		return nil
	})
}

// GetLeaderboard возвращает пользователей для лидерборда.
// Сортировка по total_score DESC; при равенстве раньше зарегистрированный выше, затем id ASC для стабильности.
func (r *UserRepo) GetLeaderboard(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "nickname", "total_score", "created_at").
		Order("total_score DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// isUniqueViolation проверяет нарушение уникальности (23505) для pgconn и lib/pq драйверов,
// а также переведенную GORM ошибку (TranslateError)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
