package websocket

// HubInterface - возможности хаба, которые нужны Manager
type HubInterface interface {
	// BroadcastJSON отправляет структуру JSON всем клиентам
	BroadcastJSON(v interface{}) error

	// SendJSONToClient отправляет структуру JSON одному соединению
	SendJSONToClient(client *Client, v interface{}) error

	// ClientCount возвращает количество подключенных клиентов
	ClientCount() int
}
