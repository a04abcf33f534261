package dto

import (
	"time"

	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// QuestionResponse представляет вопрос без правильного ответа
type QuestionResponse struct {
	ID       uint              `json:"id"`
	Topic    string            `json:"topic,omitempty"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

// SubmitAnswerRequest - тело запроса на проверку ответа.
// QuestionID указателем, чтобы отличать отсутствующее поле от нуля.
type SubmitAnswerRequest struct {
	QuestionID *uint  `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// AnswerResultResponse - результат проверки ответа
type AnswerResultResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	NewScore      int64  `json:"new_score"`
}

// ScoreEventResponse - одна запись журнала начислений
type ScoreEventResponse struct {
	ID        uint      `json:"id"`
	Score     int       `json:"score"`
	DateTaken time.Time `json:"date_taken"`
}

// ScoreHistoryResponse - журнал начислений пользователя с контрольной суммой
type ScoreHistoryResponse struct {
	TotalScore  int64                 `json:"total_score"`
	LedgerTotal int64                 `json:"ledger_total"`
	Events      []*ScoreEventResponse `json:"events"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.QuizQuestion, withTopic bool) *QuestionResponse {
	resp := &QuestionResponse{
		ID:       q.ID,
		Question: q.Question,
		Options:  q.Options(),
	}
	if withTopic {
		resp.Topic = q.Topic
	}
	return resp
}

// NewScoreEventResponse создает DTO для записи журнала
func NewScoreEventResponse(s *entity.UserScore) *ScoreEventResponse {
	return &ScoreEventResponse{
		ID:        s.ID,
		Score:     s.Score,
		DateTaken: s.DateTaken,
	}
}
