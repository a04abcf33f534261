package service

import (
	"context"
	"fmt"

	"github.com/yourusername/quiz-academy/internal/handler/dto"
	"github.com/yourusername/quiz-academy/internal/websocket"
)

// EventBroadcaster рассылает события подключенным WebSocket клиентам
type EventBroadcaster interface {
	BroadcastEvent(eventType string, data interface{}) error
}

// LeaderboardUpdate - содержимое события LEADERBOARD_UPDATE
type LeaderboardUpdate struct {
	UserID   uint                       `json:"user_id"`
	NewScore int64                      `json:"new_score"`
	Players  []*dto.LeaderboardEntryDTO `json:"players"`
}

// LeaderboardBroadcaster публикует актуальный лидерборд после начисления очков
type LeaderboardBroadcaster struct {
	userService *UserService
	broadcaster EventBroadcaster
}

// NewLeaderboardBroadcaster создает публикатор лидерборда
func NewLeaderboardBroadcaster(userService *UserService, broadcaster EventBroadcaster) *LeaderboardBroadcaster {
	return &LeaderboardBroadcaster{userService: userService, broadcaster: broadcaster}
}

// LeaderboardChanged реализует LeaderboardNotifier
func (b *LeaderboardBroadcaster) LeaderboardChanged(ctx context.Context, userID uint, newScore int64) error {
	top, err := b.userService.Top(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to build leaderboard snapshot: %w", err)
	}

	return b.broadcaster.BroadcastEvent(websocket.LEADERBOARD_UPDATE, &LeaderboardUpdate{
		UserID:   userID,
		NewScore: newScore,
		Players:  top.Players,
	})
}
