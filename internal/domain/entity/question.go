package entity

import "strings"

// Допустимые метки вариантов ответа
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// OptionLabels возвращает метки вариантов в порядке отображения
func OptionLabels() []string {
	return []string{OptionA, OptionB, OptionC, OptionD}
}

// QuizQuestion представляет вопрос викторины с четырьмя вариантами ответа
type QuizQuestion struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Topic         string `gorm:"size:100;not null;index" json:"topic"`
	Question      string `gorm:"size:500;not null" json:"question"`
	OptionA       string `gorm:"column:option_a;size:255;not null" json:"option_a"`
	OptionB       string `gorm:"column:option_b;size:255;not null" json:"option_b"`
	OptionC       string `gorm:"column:option_c;size:255;not null" json:"option_c"`
	OptionD       string `gorm:"column:option_d;size:255;not null" json:"option_d"`
	CorrectAnswer string `gorm:"size:1;not null" json:"-"` // Скрыто от клиента
}

// TableName определяет имя таблицы для GORM
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// Options возвращает варианты ответа в виде карты метка -> текст
func (q *QuizQuestion) Options() map[string]string {
	return map[string]string{
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
	}
}

// IsCorrect сравнивает ответ пользователя с правильной меткой без учета регистра
func (q *QuizQuestion) IsCorrect(answer string) bool {
	return NormalizeAnswer(answer) == q.CorrectAnswer
}

// IsValidLabel проверяет, что метка является одной из A–D
func IsValidLabel(label string) bool {
	switch NormalizeAnswer(label) {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// NormalizeAnswer приводит метку ответа к каноничному виду
func NormalizeAnswer(answer string) string {
	return strings.ToUpper(strings.TrimSpace(answer))
}
