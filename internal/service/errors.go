package service

import (
	"fmt"

	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// Ошибки викторины
var (
	ErrNoQuestionsAvailable = fmt.Errorf("%w: no questions available", apperrors.ErrNotFound)
	ErrQuestionNotFound     = fmt.Errorf("%w: question not found", apperrors.ErrNotFound)
)
