package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub хранит подключенных клиентов и рассылает им сообщения.
// Все изменения множества клиентов выполняются в горутине Run.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once

	mu    sync.RWMutex
	count int
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию, отключение и рассылку до вызова Close
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			log.Printf("[Hub] Клиент %s (Conn: %s) подключен, всего: %d", client.UserID, client.ConnectionID, len(h.clients))
			if client.registered != nil {
				close(client.registered)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.CloseSend()
				h.setCount(len(h.clients))
				log.Printf("[Hub] Клиент %s (Conn: %s) отключен, всего: %d", client.UserID, client.ConnectionID, len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if !client.trySend(message) {
					// Буфер клиента переполнен: отключаем медленного получателя
					log.Printf("[Hub] Буфер клиента %s (Conn: %s) переполнен, отключаем", client.UserID, client.ConnectionID)
					delete(h.clients, client)
					client.CloseSend()
				}
			}
			h.setCount(len(h.clients))

		case <-h.done:
			for client := range h.clients {
				client.CloseSend()
			}
			h.clients = make(map[*Client]bool)
			h.setCount(0)
			log.Println("[Hub] Остановлен")
			return
		}
	}
}

// Close останавливает хаб и закрывает каналы всех клиентов
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// BroadcastJSON отправляет структуру JSON всем клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast message: %w", err)
	}

	select {
	case <-h.done:
		return fmt.Errorf("hub is closed")
	default:
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		return fmt.Errorf("broadcast queue is full")
	}
}

// SendJSONToClient отправляет структуру JSON одному соединению
func (h *Hub) SendJSONToClient(client *Client, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if !client.trySend(data) {
		return fmt.Errorf("client %s send buffer is unavailable", client.ConnectionID)
	}
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}
