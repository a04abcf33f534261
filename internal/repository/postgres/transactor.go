package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-academy/internal/domain/repository"
)

// Transactor реализует repository.Transactor поверх gorm.DB
type Transactor struct {
	db *gorm.DB
}

// NewTransactor создает новый Transactor
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction выполняет fn в одной транзакции; GORM сам делает Commit или Rollback
// (в том числе при panic внутри fn)
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(store repository.TxStore) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{tx: tx})
	})
}

type txStore struct {
	tx *gorm.DB
}

func (s *txStore) Users() repository.UserRepository {
	return NewUserRepo(s.tx)
}

func (s *txStore) Scores() repository.ScoreRepository {
	return NewScoreRepo(s.tx)
}
