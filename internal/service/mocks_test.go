package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []entity.QuizQuestion) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetAll(ctx context.Context) ([]entity.QuizQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.QuizQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

func (m *MockQuestionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) PickRandom(ctx context.Context) (*entity.QuizQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizQuestion), args.Error(1)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	args := m.Called(ctx, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) IncrementScore(ctx context.Context, userID uint, points int64) (int64, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]entity.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockScoreRepository реализует repository.ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Append(ctx context.Context, score *entity.UserScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreRepository) SumForUser(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScoreRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]entity.UserScore, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserScore), args.Error(1)
}

// fakeTransactor передает в fn репозитории-моки и запоминает число транзакций
type fakeTransactor struct {
	users  *MockUserRepository
	scores *MockScoreRepository
	calls  int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(store repository.TxStore) error) error {
	f.calls++
	return fn(f)
}

func (f *fakeTransactor) Users() repository.UserRepository   { return f.users }
func (f *fakeTransactor) Scores() repository.ScoreRepository { return f.scores }

// MockLeaderboardNotifier реализует LeaderboardNotifier
type MockLeaderboardNotifier struct {
	mock.Mock
}

func (m *MockLeaderboardNotifier) LeaderboardChanged(ctx context.Context, userID uint, newScore int64) error {
	args := m.Called(ctx, userID, newScore)
	return args.Error(0)
}

// MockEventBroadcaster реализует EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func (m *MockEventBroadcaster) BroadcastEvent(eventType string, data interface{}) error {
	args := m.Called(eventType, data)
	return args.Error(0)
}
