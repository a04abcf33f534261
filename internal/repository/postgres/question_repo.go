package postgres

import (
	"context"
	"errors"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db   *gorm.DB
	intn func(n int) int
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db, intn: rand.IntN}
}

// NewQuestionRepoWithRand создает репозиторий с заданным источником случайных чисел (для тестов)
func NewQuestionRepoWithRand(db *gorm.DB, intn func(n int) int) *QuestionRepo {
	return &QuestionRepo{db: db, intn: intn}
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
}

// GetAll возвращает все вопросы, упорядоченные по id
func (r *QuestionRepo) GetAll(ctx context.Context) ([]entity.QuizQuestion, error) {
	questions := []entity.QuizQuestion{}
	if err := r.db.WithContext(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	var question entity.QuizQuestion
	err := r.db.WithContext(ctx).First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// Count возвращает количество вопросов
func (r *QuestionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.QuizQuestion{}).Count(&count).Error
	return count, err
}

// PickRandom выбирает один вопрос равновероятно из всего текущего набора.
// Вместо ORDER BY RANDOM() по всей таблице берем случайное смещение в [0, count).
// Возвращает nil без ошибки, если вопросов нет.
func (r *QuestionRepo) PickRandom(ctx context.Context) (*entity.QuizQuestion, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	offset := r.intn(int(count))

	var questions []entity.QuizQuestion
	err = r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(1).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	// Строка могла исчезнуть между COUNT и SELECT
	if len(questions) == 0 {
		return nil, nil
	}
	return &questions[0], nil
}
