package postgres

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
	"github.com/yourusername/quiz-academy/pkg/database"
)

// newTestDB создает файловую SQLite базу во временном каталоге с примененной схемой
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func sampleQuestions(n int) []entity.QuizQuestion {
	labels := entity.OptionLabels()
	questions := make([]entity.QuizQuestion, n)
	for i := range questions {
		questions[i] = entity.QuizQuestion{
			Topic:         "AI Development",
			Question:      "Question " + string(rune('A'+i)),
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectAnswer: labels[i%len(labels)],
		}
	}
	return questions
}

func createUser(t *testing.T, repo *UserRepo, username, nickname string) *entity.User {
	t.Helper()
	hash, err := entity.HashPassword("secret")
	require.NoError(t, err)
	user := &entity.User{Username: username, Nickname: nickname, Password: hash}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// ============================================================================
// QuestionRepo
// ============================================================================

func TestQuestionRepo_EmptyRepository(t *testing.T) {
	repo := NewQuestionRepo(newTestDB(t))
	ctx := context.Background()

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "Пустой репозиторий должен вернуть пустой список")

	q, err := repo.PickRandom(ctx)
	require.NoError(t, err, "PickRandom по пустому репозиторию не должен возвращать ошибку")
	assert.Nil(t, q, "PickRandom по пустому репозиторию должен вернуть nil")

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuestionRepo_CreateBatchAndGet(t *testing.T) {
	repo := NewQuestionRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, sampleQuestions(3)))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID, "Вопросы должны быть упорядочены по id")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	got, err := repo.GetByID(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, all[1].Question, got.Question)
	assert.Equal(t, "B", got.CorrectAnswer)
}

func TestQuestionRepo_PickRandom_UsesOffsetOverFullSet(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, NewQuestionRepo(db).CreateBatch(context.Background(), sampleQuestions(5)))

	var gotN int
	repo := NewQuestionRepoWithRand(db, func(n int) int {
		gotN = n
		return n - 1
	})

	q, err := repo.PickRandom(context.Background())
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 5, gotN, "Выборка должна идти по всему текущему набору")
	assert.Equal(t, "Question E", q.Question, "Смещение n-1 должно вернуть последний вопрос")
}

func TestQuestionRepo_PickRandom_Uniform(t *testing.T) {
	repo := NewQuestionRepo(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.CreateBatch(ctx, sampleQuestions(5)))

	const draws = 2000
	counts := make(map[uint]int)
	for i := 0; i < draws; i++ {
		q, err := repo.PickRandom(ctx)
		require.NoError(t, err)
		require.NotNil(t, q)
		counts[q.ID]++
	}

	require.Len(t, counts, 5, "Каждый вопрос должен выпадать")
	for id, c := range counts {
		// Ожидание 400, стандартное отклонение ~18
		assert.InDelta(t, draws/5, c, 120, "Вопрос %d выпал %d раз", id, c)
	}
}

// ============================================================================
// UserRepo
// ============================================================================

func TestUserRepo_CreateAndLookups(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	user := createUser(t, repo, "alice", "Alice")
	assert.NotZero(t, user.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, user.Password, byName.Password, "Репозиторий сохраняет хеш без изменений")
	assert.True(t, byName.CheckPassword("secret"))

	byNick, err := repo.GetByNickname(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byNick.ID)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepo_CreateDuplicateUsername(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	createUser(t, repo, "alice", "Alice")

	err := repo.Create(context.Background(), &entity.User{Username: "alice", Nickname: "Other", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRepo_IncrementScore(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "alice", "Alice")

	total, err := repo.IncrementScore(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	total, err = repo.IncrementScore(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)

	_, err = repo.IncrementScore(ctx, 9999, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepo_GetLeaderboard_OrderAndTieBreak(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []*entity.User{
		{Username: "carol", Nickname: "Carol", Password: "x", TotalScore: 20, CreatedAt: base.Add(2 * time.Hour)},
		{Username: "alice", Nickname: "Alice", Password: "x", TotalScore: 30, CreatedAt: base.Add(3 * time.Hour)},
		{Username: "bob", Nickname: "Bob", Password: "x", TotalScore: 20, CreatedAt: base.Add(1 * time.Hour)},
		{Username: "dave", Nickname: "Dave", Password: "x", TotalScore: 0, CreatedAt: base},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, u))
	}

	top, err := repo.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"},
		[]string{top[0].Nickname, top[1].Nickname, top[2].Nickname, top[3].Nickname},
		"При равном счете выше тот, кто зарегистрировался раньше")

	top, err = repo.GetLeaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestUserRepo_GetLeaderboard_Empty(t *testing.T) {
	repo := NewUserRepo(newTestDB(t))

	top, err := repo.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestUserRepo_DeleteRemovesScores(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	scores := NewScoreRepo(db)
	ctx := context.Background()

	user := createUser(t, users, "alice", "Alice")
	require.NoError(t, scores.Append(ctx, &entity.UserScore{UserID: user.ID, Score: 10}))

	require.NoError(t, users.Delete(ctx, user.ID))

	_, err := users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var remaining int64
	require.NoError(t, db.Model(&entity.UserScore{}).Where("user_id = ?", user.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "Журнал очков должен удаляться вместе с пользователем")

	assert.ErrorIs(t, users.Delete(ctx, user.ID), apperrors.ErrNotFound)
}

// ============================================================================
// ScoreRepo + Transactor
// ============================================================================

func TestScoreRepo_AppendSumList(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, NewUserRepo(db), "alice", "Alice")
	repo := NewScoreRepo(db)
	ctx := context.Background()

	sum, err := repo.SumForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, sum, "Сумма по пустому журналу должна быть 0")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, &entity.UserScore{UserID: user.ID, Score: 10}))
	}

	sum, err = repo.SumForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), sum)

	events, err := repo.ListByUser(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].DateTaken.IsZero(), "Время начисления должно проставляться")
	assert.True(t, events[0].ID > events[1].ID, "Новые записи должны идти первыми")
}

func TestTransactor_CommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, NewUserRepo(db), "alice", "Alice")
	tx := NewTransactor(db)
	ctx := context.Background()

	err := tx.WithinTransaction(ctx, func(store repository.TxStore) error {
		if _, err := store.Users().IncrementScore(ctx, user.ID, 10); err != nil {
			return err
		}
		return store.Scores().Append(ctx, &entity.UserScore{UserID: user.ID, Score: 10})
	})
	require.NoError(t, err)

	rollbackErr := assert.AnError
	err = tx.WithinTransaction(ctx, func(store repository.TxStore) error {
		if _, err := store.Users().IncrementScore(ctx, user.ID, 10); err != nil {
			return err
		}
		return rollbackErr
	})
	assert.ErrorIs(t, err, rollbackErr)

	reloaded, err := NewUserRepo(db).GetByID(ctx, user.ID)
	require.NoError(t, err)
	sum, err := NewScoreRepo(db).SumForUser(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(10), reloaded.TotalScore, "Откаченная транзакция не должна менять счет")
	assert.Equal(t, reloaded.TotalScore, sum, "total_score должен совпадать с суммой журнала")
}

func TestTransactor_ConcurrentAwardsKeepInvariant(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, NewUserRepo(db), "alice", "Alice")
	tx := NewTransactor(db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tx.WithinTransaction(ctx, func(store repository.TxStore) error {
				if _, err := store.Users().IncrementScore(ctx, user.ID, 10); err != nil {
					return err
				}
				return store.Scores().Append(ctx, &entity.UserScore{UserID: user.ID, Score: 10})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reloaded, err := NewUserRepo(db).GetByID(ctx, user.ID)
	require.NoError(t, err)
	sum, err := NewScoreRepo(db).SumForUser(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(workers*10), reloaded.TotalScore)
	assert.Equal(t, reloaded.TotalScore, sum)
}
