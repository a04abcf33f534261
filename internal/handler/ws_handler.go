package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/quiz-academy/internal/service"
	"github.com/yourusername/quiz-academy/internal/websocket"
)

// WSHandler обрабатывает WebSocket соединения живого лидерборда
type WSHandler struct {
	wsHub       *websocket.Hub
	wsManager   *websocket.Manager
	userService *service.UserService
	upgrader    gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(
	wsHub *websocket.Hub,
	wsManager *websocket.Manager,
	userService *service.UserService,
	allowedOrigins []string,
) *WSHandler {
	handler := &WSHandler{
		wsHub:       wsHub,
		wsManager:   wsManager,
		userService: userService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}

	// Регистрируем обработчики сообщений один раз при создании обработчика
	handler.registerMessageHandlers()

	return handler
}

// originChecker разрешает клиентов без Origin (не браузер) и источники из списка CORS
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed[origin] || allowed["*"] {
			return true
		}
		log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
		return false
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение.
// Лента публичная: токен необязателен и используется только для подписи соединения.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}

	userID := ""
	if id, ok := currentUserID(c); ok {
		userID = fmt.Sprintf("%d", id)
	}

	client := websocket.NewClient(h.wsHub, conn, userID)
	log.Printf("WebSocket: Connection upgraded for UserID: %s (Conn: %s)", client.UserID, client.ConnectionID)

	client.StartPumps(h.wsManager.HandleMessage)
}

// registerMessageHandlers регистрирует обработчики для различных типов сообщений
func (h *WSHandler) registerMessageHandlers() {
	// Запрос текущего состояния лидерборда
	h.wsManager.RegisterHandler("leaderboard:get", func(data json.RawMessage, client *websocket.Client) error {
		var req struct {
			Limit int `json:"limit"`
		}
		if len(data) > 0 && string(data) != "null" {
			if err := json.Unmarshal(data, &req); err != nil {
				h.wsManager.SendErrorToClient(client, "invalid_format", "Failed to parse leaderboard:get event")
				return nil
			}
		}

		top, err := h.userService.Top(context.Background(), req.Limit)
		if err != nil {
			log.Printf("[WSHandler] Ошибка получения лидерборда: %v", err)
			h.wsManager.SendErrorToClient(client, "leaderboard_error", "Failed to load leaderboard")
			return nil
		}

		if err := h.wsManager.SendEventToClient(client, websocket.LEADERBOARD_UPDATE, top); err != nil {
			log.Printf("[WSHandler] WARNING: Ошибка отправки лидерборда клиенту %s: %v", client.ConnectionID, err)
		}
		return nil
	})

	// Обработчик для проверки соединения
	h.wsManager.RegisterHandler("user:heartbeat", func(data json.RawMessage, client *websocket.Client) error {
		heartbeatResponse := map[string]interface{}{
			"timestamp": time.Now().UnixNano() / int64(time.Millisecond),
		}
		if err := h.wsManager.SendEventToClient(client, "server:heartbeat", heartbeatResponse); err != nil {
			log.Printf("[WSHandler] WARNING: Ошибка при отправке server:heartbeat клиенту %s: %v", client.ConnectionID, err)
		}
		return nil // Никогда не закрываем соединение из-за heartbeat
	})
}
