package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 512

	// Размер буфера канала исходящих сообщений
	defaultClientBufferSize = 64

	// Сколько ждать регистрации в хабе
	registrationTimeout = 5 * time.Second
)

// Client является посредником между WebSocket соединением и hub.
type Client struct {
	// ID пользователя или "anonymous" для зрителей без токена
	UserID string

	// Уникальный ID для каждого соединения
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send       chan []byte
	sendMu     sync.RWMutex
	sendClosed bool

	// Закрывается хабом после регистрации
	registered chan struct{}
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	if userID == "" {
		userID = "anonymous"
	}
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
		registered:   make(chan struct{}),
	}
}

// trySend кладет сообщение в буфер без блокировки. false, если буфер полон или закрыт.
func (c *Client) trySend(message []byte) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// CloseSend безопасно закрывает канал отправки. Возвращает true, если канал был закрыт этим вызовом.
func (c *Client) CloseSend() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	c.sendClosed = true
	close(c.send)
	return true
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps(messageHandler func(message []byte, client *Client) error) {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return
	case <-time.After(registrationTimeout):
		log.Printf("WebSocket: timeout waiting for client %s registration", c.UserID)
		c.conn.Close()
		return
	}
	<-c.registered

	go c.writePump()
	go c.readPump(messageHandler)
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(messageHandler func(message []byte, client *Client) error) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("WebSocket Client Read Error (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
			}
			return
		}
		if messageHandler == nil {
			continue
		}
		if err := messageHandler(message, c); err != nil {
			log.Printf("WebSocket Client Handler Error (UserID: %s, ConnID: %s): %v. Closing connection.", c.UserID, c.ConnectionID, err)
			return
		}
	}
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Хаб закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket Client Write Error (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
