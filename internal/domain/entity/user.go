package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User представляет пользователя в системе
type User struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Username   string      `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Nickname   string      `gorm:"size:80;not null;uniqueIndex" json:"nickname"`
	Password   string      `gorm:"size:255;not null" json:"-"`
	TotalScore int64       `gorm:"not null;default:0;index:idx_users_leaderboard" json:"total_score"`
	Scores     []UserScore `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time   `gorm:"index:idx_users_leaderboard" json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// HashPassword возвращает bcrypt-хеш пароля.
// Хеширование выполняется явно при регистрации, репозиторий сохраняет поле как есть.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
