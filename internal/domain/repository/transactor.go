package repository

import "context"

// TxStore предоставляет репозитории, привязанные к одной транзакции
type TxStore interface {
	Users() UserRepository
	Scores() ScoreRepository
}

// Transactor выполняет fn в рамках одной транзакции.
// Транзакция фиксируется, если fn вернула nil, и откатывается в любом другом случае.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(store TxStore) error) error
}
