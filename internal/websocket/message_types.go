package websocket

// Типы сообщений живой ленты
const (
	// LEADERBOARD_UPDATE рассылается после каждого начисления очков
	LEADERBOARD_UPDATE = "LEADERBOARD_UPDATE"

	// SERVER_ERROR сообщает клиенту об ошибке обработки его сообщения
	SERVER_ERROR = "server:error"
)
