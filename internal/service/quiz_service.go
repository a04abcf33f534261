package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	"github.com/yourusername/quiz-academy/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// Сколько последних записей журнала отдается в истории очков
const scoreHistoryLimit = 50

// LeaderboardNotifier получает уведомление после зафиксированного начисления очков
type LeaderboardNotifier interface {
	LeaderboardChanged(ctx context.Context, userID uint, newScore int64) error
}

// QuizService реализует выдачу вопросов и проверку ответов
type QuizService struct {
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	scoreRepo    repository.ScoreRepository
	transactor   repository.Transactor
	notifier     LeaderboardNotifier
}

// NewQuizService создает новый сервис викторины
func NewQuizService(
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	scoreRepo repository.ScoreRepository,
	transactor repository.Transactor,
) *QuizService {
	return &QuizService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		scoreRepo:    scoreRepo,
		transactor:   transactor,
	}
}

// SetLeaderboardNotifier подключает живую ленту лидерборда (опционально)
func (s *QuizService) SetLeaderboardNotifier(notifier LeaderboardNotifier) {
	s.notifier = notifier
}

// ServeNextQuestion выбирает случайный вопрос для пользователя.
// Сервер не хранит состояние сессии: клиент возвращает id вместе с ответом.
func (s *QuizService) ServeNextQuestion(ctx context.Context, userID uint) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.PickRandom(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pick question: %w", err)
	}
	if question == nil {
		log.Printf("[QuizService.ServeNextQuestion] Нет доступных вопросов (пользователь ID=%d)", userID)
		return nil, ErrNoQuestionsAvailable
	}
	return dto.NewQuestionResponse(question, false), nil
}

// SubmitAnswer проверяет ответ и при правильном ответе начисляет очки.
// Увеличение total_score и запись в журнал выполняются в одной транзакции.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID uint, questionID uint, answer string) (*dto.AnswerResultResponse, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}

	if !question.IsCorrect(answer) {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		return &dto.AnswerResultResponse{
			Correct:       false,
			CorrectAnswer: question.CorrectAnswer,
			NewScore:      user.TotalScore,
		}, nil
	}

	var newScore int64
	err = s.transactor.WithinTransaction(ctx, func(store repository.TxStore) error {
		total, err := store.Users().IncrementScore(ctx, userID, entity.PointsPerCorrectAnswer)
		if err != nil {
			return err
		}
		event := &entity.UserScore{UserID: userID, Score: entity.PointsPerCorrectAnswer}
		if err := store.Scores().Append(ctx, event); err != nil {
			return err
		}
		newScore = total
		return nil
	})
	if err != nil {
		log.Printf("[QuizService.SubmitAnswer] Ошибка начисления очков пользователю ID=%d за вопрос ID=%d: %v", userID, questionID, err)
		return nil, fmt.Errorf("failed to award points: %w", err)
	}

	log.Printf("[QuizService.SubmitAnswer] Пользователь ID=%d ответил верно на вопрос ID=%d, счет: %d", userID, questionID, newScore)

	if s.notifier != nil {
		if err := s.notifier.LeaderboardChanged(ctx, userID, newScore); err != nil {
			log.Printf("[QuizService.SubmitAnswer] Ошибка уведомления лидерборда: %v", err)
		}
	}

	return &dto.AnswerResultResponse{
		Correct:       true,
		CorrectAnswer: question.CorrectAnswer,
		NewScore:      newScore,
	}, nil
}

// ListQuestions возвращает все вопросы без правильных ответов
func (s *QuizService) ListQuestions(ctx context.Context) ([]*dto.QuestionResponse, error) {
	questions, err := s.questionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	result := make([]*dto.QuestionResponse, len(questions))
	for i := range questions {
		result[i] = dto.NewQuestionResponse(&questions[i], true)
	}
	return result, nil
}

// ScoreHistory возвращает последние начисления пользователя и сверку с total_score
func (s *QuizService) ScoreHistory(ctx context.Context, userID uint) (*dto.ScoreHistoryResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum, err := s.scoreRepo.SumForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum score ledger: %w", err)
	}

	events, err := s.scoreRepo.ListByUser(ctx, userID, scoreHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list score ledger: %w", err)
	}

	if sum != user.TotalScore {
		log.Printf("[QuizService.ScoreHistory] Расхождение счета пользователя ID=%d: total_score=%d, журнал=%d", userID, user.TotalScore, sum)
	}

	resp := &dto.ScoreHistoryResponse{
		TotalScore:  user.TotalScore,
		LedgerTotal: sum,
		Events:      make([]*dto.ScoreEventResponse, len(events)),
	}
	for i := range events {
		resp.Events[i] = dto.NewScoreEventResponse(&events[i])
	}
	return resp, nil
}
