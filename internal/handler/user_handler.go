package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quiz-academy/internal/handler/dto"
	"github.com/yourusername/quiz-academy/internal/service"
)

// Ключ контекста с лимитом лидерборда (выставляется middleware.ExtractIntQuery)
const LeaderboardLimitKey = "leaderboard_limit"

// UserHandler обрабатывает запросы, связанные с лидербордом
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetLeaderboard обрабатывает запрос на получение лидерборда
func (h *UserHandler) GetLeaderboard(c *gin.Context) {
	leaderboard, err := h.userService.Top(c.Request.Context(), c.GetInt(LeaderboardLimitKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error getting leaderboard"})
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}

// ExportLeaderboard выгружает лидерборд в CSV или XLSX
func (h *UserHandler) ExportLeaderboard(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "validation"})
		return
	}

	leaderboard, err := h.userService.Top(c.Request.Context(), c.GetInt(LeaderboardLimitKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error getting leaderboard"})
		return
	}

	filename := fmt.Sprintf("leaderboard_%s", time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		h.exportXLSX(c, leaderboard.Players, filename)
		return
	}
	h.exportCSV(c, leaderboard.Players, filename)
}

var leaderboardHeaders = []string{"Rank", "Nickname", "Total score"}

// exportCSV экспортирует лидерборд в CSV с правильным экранированием спецсимволов
func (h *UserHandler) exportCSV(c *gin.Context, players []*dto.LeaderboardEntryDTO, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(leaderboardHeaders)
	for _, p := range players {
		writer.Write([]string{
			strconv.Itoa(p.Rank),
			sanitizeForExcel(p.Nickname),
			strconv.FormatInt(p.TotalScore, 10),
		})
	}
}

// exportXLSX экспортирует лидерборд в Excel с использованием StreamWriter
func (h *UserHandler) exportXLSX(c *gin.Context, players []*dto.LeaderboardEntryDTO, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leaderboard"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[UserHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(leaderboardHeaders))
	for i, title := range leaderboardHeaders {
		headers[i] = title
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[UserHandler] Ошибка записи заголовков: %v", err)
	}

	for i, p := range players {
		cell := fmt.Sprintf("A%d", i+2) // 1 - заголовки
		if err := sw.SetRow(cell, []interface{}{p.Rank, sanitizeForExcel(p.Nickname), p.TotalScore}); err != nil {
			log.Printf("[UserHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[UserHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[UserHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
