package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/quiz-academy/internal/config"
	"github.com/yourusername/quiz-academy/internal/domain/repository"
	"github.com/yourusername/quiz-academy/internal/handler/dto"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
)

// Ошибки прогноза погоды
var (
	ErrWeatherNotConfigured = fmt.Errorf("%w: weather API key not configured", apperrors.ErrConfiguration)
	ErrWeatherService       = fmt.Errorf("%w: weather service error", apperrors.ErrServiceUnavailable)
	ErrWeatherMalformed     = fmt.Errorf("%w: invalid weather data", apperrors.ErrMalformedResponse)
)

const weatherCacheKeyPrefix = "weather:forecast:"

// WeatherService получает прогноз погоды из weatherapi.com
type WeatherService struct {
	cfg        config.WeatherConfig
	httpClient *http.Client
	// cacheRepo может быть nil, тогда каждый запрос идет во внешний API
	cacheRepo repository.CacheRepository
}

// NewWeatherService создает сервис прогноза погоды
func NewWeatherService(cfg config.WeatherConfig, cacheRepo repository.CacheRepository) *WeatherService {
	timeout := cfg.WeatherTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 4
	}
	return &WeatherService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		cacheRepo:  cacheRepo,
	}
}

// DefaultCity возвращает город по умолчанию для виджета
func (s *WeatherService) DefaultCity() string {
	return s.cfg.DefaultCity
}

// weatherAPIResponse - интересующая нас часть ответа forecast.json.
// Указатели позволяют отличить отсутствующие поля от нулевых значений.
type weatherAPIResponse struct {
	Forecast *struct {
		ForecastDay []struct {
			Date *string `json:"date"`
			Day  *struct {
				MaxTempC  *float64 `json:"maxtemp_c"`
				MinTempC  *float64 `json:"mintemp_c"`
				Condition struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetForecast возвращает прогноз не более чем на ForecastDays дней
func (s *WeatherService) GetForecast(ctx context.Context, city string) ([]*dto.ForecastDayDTO, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrWeatherNotConfigured
	}
	city = strings.TrimSpace(city)
	if city == "" {
		city = s.cfg.DefaultCity
	}

	cacheKey := weatherCacheKeyPrefix + strings.ToLower(city)
	if s.cacheRepo != nil {
		var cached []*dto.ForecastDayDTO
		if err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			// Битая запись вытесняется и перезаписывается свежим прогнозом
			log.Printf("[WeatherService.GetForecast] Ошибка чтения кеша для %q: %v", city, err)
			if delErr := s.cacheRepo.Delete(ctx, cacheKey); delErr != nil {
				log.Printf("[WeatherService.GetForecast] Не удалось удалить запись кеша %s: %v", cacheKey, delErr)
			}
		}
	}

	forecast, err := s.fetch(ctx, city)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil && len(forecast) > 0 {
		if err := s.cacheRepo.SetJSON(ctx, cacheKey, forecast, s.cfg.WeatherCacheTTL()); err != nil {
			log.Printf("[WeatherService.GetForecast] Ошибка записи кеша для %q: %v", city, err)
		}
	}
	return forecast, nil
}

func (s *WeatherService) fetch(ctx context.Context, city string) ([]*dto.ForecastDayDTO, error) {
	params := url.Values{}
	params.Set("key", s.cfg.APIKey)
	params.Set("q", city)
	params.Set("days", strconv.Itoa(s.cfg.ForecastDays))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrWeatherService, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[WeatherService.fetch] Запрос прогноза для %q не выполнен: %v", city, err)
		return nil, fmt.Errorf("%w: %v", ErrWeatherService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiErr weatherAPIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: status=%d: %s", ErrWeatherService, resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: status=%d", ErrWeatherService, resp.StatusCode)
	}

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherMalformed, err)
	}
	return parseForecast(&payload, s.cfg.ForecastDays)
}

// parseForecast преобразует ответ API. Дни без даты или данных пропускаются.
func parseForecast(payload *weatherAPIResponse, maxDays int) ([]*dto.ForecastDayDTO, error) {
	if payload.Forecast == nil {
		return nil, fmt.Errorf("%w: missing forecast", ErrWeatherMalformed)
	}

	result := make([]*dto.ForecastDayDTO, 0, maxDays)
	for _, day := range payload.Forecast.ForecastDay {
		if len(result) == maxDays {
			break
		}
		if day.Date == nil || day.Day == nil || day.Day.MaxTempC == nil || day.Day.MinTempC == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", *day.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrWeatherMalformed, *day.Date)
		}

		result = append(result, &dto.ForecastDayDTO{
			Date:      *day.Date,
			DayName:   date.Weekday().String(),
			MaxTemp:   int(math.Round(*day.Day.MaxTempC)),
			MinTemp:   int(math.Round(*day.Day.MinTempC)),
			Condition: day.Day.Condition.Text,
			Icon:      day.Day.Condition.Icon,
		})
	}
	return result, nil
}

// WeatherErrorType возвращает тип ошибки прогноза для ответа клиенту
func WeatherErrorType(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrConfiguration):
		return "ConfigurationMissing"
	case errors.Is(err, apperrors.ErrMalformedResponse):
		return "MalformedResponse"
	default:
		return "ServiceError"
	}
}
