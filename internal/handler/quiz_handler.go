package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-academy/internal/handler/dto"
	"github.com/yourusername/quiz-academy/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викториной
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторины
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// GetNextQuestion выдает случайный вопрос
func (h *QuizHandler) GetNextQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	question, err := h.quizService.ServeNextQuestion(c.Request.Context(), userID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswer проверяет ответ пользователя
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id is required", "error_type": "validation"})
		return
	}

	result, err := h.quizService.SubmitAnswer(c.Request.Context(), userID, *req.QuestionID, req.Answer)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListQuestions возвращает все вопросы без правильных ответов
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	questions, err := h.quizService.ListQuestions(c.Request.Context())
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetScoreHistory возвращает журнал начислений текущего пользователя
func (h *QuizHandler) GetScoreHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	history, err := h.quizService.ScoreHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// handleQuizError - общие сообщения для отсутствующих вопросов
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "No questions available"})
	case errors.Is(err, service.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	default:
		writeAppError(c, "QuizHandler", err)
	}
}
