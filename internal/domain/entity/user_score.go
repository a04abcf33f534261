package entity

import "time"

// PointsPerCorrectAnswer - фиксированное количество очков за правильный ответ
const PointsPerCorrectAnswer = 10

// UserScore - неизменяемая запись о начислении очков пользователю
type UserScore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Score     int       `gorm:"not null" json:"score"`
	DateTaken time.Time `gorm:"not null;index" json:"date_taken"`
}

// TableName определяет имя таблицы для GORM
func (UserScore) TableName() string {
	return "user_scores"
}
