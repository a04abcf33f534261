package service

import (
	"context"
	"log"

	"github.com/yourusername/quiz-academy/internal/domain/repository"
	"github.com/yourusername/quiz-academy/internal/handler/dto"
)

// Максимальный размер лидерборда за один запрос
const maxLeaderboardLimit = 100

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo     repository.UserRepository
	defaultLimit int
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, defaultLimit int) *UserService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &UserService{
		userRepo:     userRepo,
		defaultLimit: defaultLimit,
	}
}

// Top возвращает n лучших игроков по накопленному счету.
// n <= 0 заменяется значением по умолчанию, n > 100 ограничивается сверху.
func (s *UserService) Top(ctx context.Context, n int) (*dto.LeaderboardResponse, error) {
	if n <= 0 {
		n = s.defaultLimit
	} else if n > maxLeaderboardLimit {
		n = maxLeaderboardLimit
	}

	users, err := s.userRepo.GetLeaderboard(ctx, n)
	if err != nil {
		log.Printf("[UserService] Ошибка при получении лидерборда из репозитория: %v", err)
		return nil, err
	}

	players := make([]*dto.LeaderboardEntryDTO, len(users))
	for i, user := range users {
		players[i] = &dto.LeaderboardEntryDTO{
			Rank:       i + 1,
			UserID:     user.ID,
			Nickname:   user.Nickname,
			TotalScore: user.TotalScore,
		}
	}

	return &dto.LeaderboardResponse{Players: players}, nil
}
