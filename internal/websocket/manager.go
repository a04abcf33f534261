package websocket

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Manager обрабатывает WebSocket сообщения
type Manager struct {
	hub            HubInterface
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub HubInterface) *Manager {
	return &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Failed to unmarshal message from %s: %v", client.UserID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil // Неизвестный тип - не закрываем соединение
	}
	return handler(event.Data, client)
}

// SendErrorToClient отправляет клиенту сообщение об ошибке, не закрывая соединение
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	errorEvent := Event{
		Type: SERVER_ERROR,
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := m.hub.SendJSONToClient(client, errorEvent); err != nil {
		log.Printf("ERROR sending error to client %s: %v", client.UserID, err)
	}
}

// SendEventToClient отправляет событие одному соединению
func (m *Manager) SendEventToClient(client *Client, eventType string, data interface{}) error {
	return m.hub.SendJSONToClient(client, Event{Type: eventType, Data: data})
}

// BroadcastEvent отправляет событие всем клиентам
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	return m.hub.BroadcastJSON(Event{Type: eventType, Data: data})
}

// ClientCount возвращает количество подключенных клиентов
func (m *Manager) ClientCount() int {
	return m.hub.ClientCount()
}
