package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
)

// SampleQuestions возвращает стартовый набор вопросов
func SampleQuestions() []entity.QuizQuestion {
	return []entity.QuizQuestion{
		{
			Topic:         "AI Development",
			Question:      "Python library mana yang paling populer untuk machine learning?",
			OptionA:       "NumPy",
			OptionB:       "Scikit-learn",
			OptionC:       "Pandas",
			OptionD:       "Matplotlib",
			CorrectAnswer: entity.OptionB,
		},
		{
			Topic:         "AI Development",
			Question:      "Apa kepanjangan dari NLP?",
			OptionA:       "Neural Learning Process",
			OptionB:       "Natural Language Processing",
			OptionC:       "Neurological Language Pattern",
			OptionD:       "Network Learning Protocol",
			CorrectAnswer: entity.OptionB,
		},
		{
			Topic:         "Computer Vision",
			Question:      "Library mana yang sering digunakan untuk Computer Vision?",
			OptionA:       "TensorFlow",
			OptionB:       "OpenCV",
			OptionC:       "Keras",
			OptionD:       "PyTorch",
			CorrectAnswer: entity.OptionB,
		},
		{
			Topic:         "AI Development",
			Question:      "Apa yang dimaksud dengan Deep Learning?",
			OptionA:       "Pembelajaran menggunakan neural network dengan banyak layer",
			OptionB:       "Pembelajaran dengan data yang sangat besar",
			OptionC:       "Pembelajaran menggunakan komputer berkekuatan tinggi",
			OptionD:       "Pembelajaran untuk masalah yang sangat kompleks",
			CorrectAnswer: entity.OptionA,
		},
		{
			Topic:         "Computer Vision",
			Question:      "CNN digunakan untuk?",
			OptionA:       "Text classification",
			OptionB:       "Image recognition",
			OptionC:       "Time series prediction",
			OptionD:       "Natural language generation",
			CorrectAnswer: entity.OptionB,
		},
	}
}

// SeedSampleQuestions добавляет стартовые вопросы, только если таблица пуста.
// Возвращает количество добавленных вопросов.
func SeedSampleQuestions(ctx context.Context, questionRepo repository.QuestionRepository) (int, error) {
	count, err := questionRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		log.Printf("[Seed] В базе уже %d вопросов, пропускаем", count)
		return 0, nil
	}

	questions := SampleQuestions()
	if err := questionRepo.CreateBatch(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to seed questions: %w", err)
	}
	log.Printf("[Seed] Добавлено %d стартовых вопросов", len(questions))
	return len(questions), nil
}
