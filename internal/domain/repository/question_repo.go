package repository

import (
	"context"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами викторины
type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error
	GetAll(ctx context.Context) ([]entity.QuizQuestion, error)
	GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error)
	Count(ctx context.Context) (int64, error)
	// PickRandom возвращает равновероятно выбранный вопрос или nil, если вопросов нет
	PickRandom(ctx context.Context) (*entity.QuizQuestion, error)
}
