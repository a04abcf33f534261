package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-academy/internal/handler/dto"
	"github.com/yourusername/quiz-academy/internal/service"
)

// WeatherHandler обслуживает виджет погоды
type WeatherHandler struct {
	weatherService *service.WeatherService
}

// NewWeatherHandler создает новый обработчик погоды
func NewWeatherHandler(weatherService *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GetWeather возвращает прогноз для города.
// Ошибки внешнего API не ломают запрос: ответ 200 с пустым прогнозом и описанием ошибки.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		city = h.weatherService.DefaultCity()
	}

	resp := &dto.WeatherResponse{City: city, Forecast: []*dto.ForecastDayDTO{}}

	forecast, err := h.weatherService.GetForecast(c.Request.Context(), city)
	if err != nil {
		log.Printf("[WeatherHandler] Прогноз для %q недоступен: %v", city, err)
		resp.Error = err.Error()
		resp.ErrorType = service.WeatherErrorType(err)
		c.JSON(http.StatusOK, resp)
		return
	}

	if forecast != nil {
		resp.Forecast = forecast
	}
	c.JSON(http.StatusOK, resp)
}
