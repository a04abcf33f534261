package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quiz-academy/internal/config"
	apperrors "github.com/yourusername/quiz-academy/internal/pkg/errors"
	redisrepo "github.com/yourusername/quiz-academy/internal/repository/redis"
)

const forecastFixture = `{
  "location": {"name": "Jakarta"},
  "forecast": {"forecastday": [
    {"date": "2024-01-01", "day": {"maxtemp_c": 31.6, "mintemp_c": 24.4, "condition": {"text": "Patchy rain possible", "icon": "//cdn.weatherapi.com/weather/64x64/day/176.png"}}},
    {"date": "2024-01-02", "day": {"maxtemp_c": 30.2, "mintemp_c": 23.5, "condition": {"text": "Sunny", "icon": "//cdn.weatherapi.com/weather/64x64/day/113.png"}}},
    {"day": {"maxtemp_c": 29.0, "mintemp_c": 22.0, "condition": {"text": "Cloudy", "icon": "x"}}},
    {"date": "2024-01-04"},
    {"date": "2024-01-05", "day": {"maxtemp_c": 28.0, "mintemp_c": 22.0, "condition": {"text": "Overcast", "icon": "y"}}},
    {"date": "2024-01-06", "day": {"maxtemp_c": 28.0, "mintemp_c": 22.0, "condition": {"text": "Mist", "icon": "z"}}},
    {"date": "2024-01-07", "day": {"maxtemp_c": 28.0, "mintemp_c": 22.0, "condition": {"text": "Rain", "icon": "w"}}}
  ]}
}`

func weatherConfig(baseURL string) config.WeatherConfig {
	return config.WeatherConfig{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		ForecastDays: 4,
		TimeoutSec:   1,
		CacheTTLSec:  600,
		DefaultCity:  "Jakarta",
	}
}

func newForecastServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		q := r.URL.Query()
		if q.Get("key") != "test-key" || q.Get("days") != "4" || q.Get("aqi") != "no" || q.Get("alerts") != "no" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherService_GetForecast(t *testing.T) {
	// Arrange
	srv := newForecastServer(t, http.StatusOK, forecastFixture, nil)
	svc := NewWeatherService(weatherConfig(srv.URL), nil)

	// Act
	forecast, err := svc.GetForecast(context.Background(), "Jakarta")

	// Assert
	require.NoError(t, err)
	require.Len(t, forecast, 4, "Не более 4 дней, дни без данных пропускаются")
	assert.Equal(t, "2024-01-01", forecast[0].Date)
	assert.Equal(t, "Monday", forecast[0].DayName)
	assert.Equal(t, 32, forecast[0].MaxTemp)
	assert.Equal(t, 24, forecast[0].MinTemp)
	assert.Equal(t, "Patchy rain possible", forecast[0].Condition)
	assert.Equal(t, "Tuesday", forecast[1].DayName)
	assert.Equal(t, "2024-01-05", forecast[2].Date)
	assert.Equal(t, "2024-01-06", forecast[3].Date)
}

func TestWeatherService_NotConfigured(t *testing.T) {
	cfg := weatherConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	svc := NewWeatherService(cfg, nil)

	_, err := svc.GetForecast(context.Background(), "Jakarta")

	assert.ErrorIs(t, err, ErrWeatherNotConfigured)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Equal(t, "ConfigurationMissing", WeatherErrorType(err))
}

func TestWeatherService_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantType string
	}{
		{"HTTP 500", http.StatusInternalServerError, `oops`, ErrWeatherService, "ServiceError"},
		{"неизвестный город", http.StatusBadRequest, `{"error":{"code":1006,"message":"No matching location found."}}`, ErrWeatherService, "ServiceError"},
		{"невалидный JSON", http.StatusOK, `{"forecast":`, ErrWeatherMalformed, "MalformedResponse"},
		{"нет forecast", http.StatusOK, `{"location":{}}`, ErrWeatherMalformed, "MalformedResponse"},
		{"неверная дата", http.StatusOK, `{"forecast":{"forecastday":[{"date":"01/01/2024","day":{"maxtemp_c":1,"mintemp_c":0}}]}}`, ErrWeatherMalformed, "MalformedResponse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newForecastServer(t, tt.status, tt.body, nil)
			svc := NewWeatherService(weatherConfig(srv.URL), nil)

			forecast, err := svc.GetForecast(context.Background(), "Nowhere")

			assert.Nil(t, forecast)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantType, WeatherErrorType(err))
		})
	}
}

func TestWeatherService_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	svc := NewWeatherService(weatherConfig(srv.URL), nil)

	start := time.Now()
	_, err := svc.GetForecast(context.Background(), "Jakarta")

	assert.ErrorIs(t, err, ErrWeatherService)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.Less(t, time.Since(start), 3*time.Second, "Запрос должен прерываться по тайм-ауту")
}

func TestWeatherService_EmptyCityUsesDefault(t *testing.T) {
	var gotCity string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		w.Write([]byte(`{"forecast":{"forecastday":[]}}`))
	}))
	t.Cleanup(srv.Close)
	svc := NewWeatherService(weatherConfig(srv.URL), nil)

	forecast, err := svc.GetForecast(context.Background(), "  ")

	require.NoError(t, err)
	assert.Empty(t, forecast)
	assert.Equal(t, "Jakarta", gotCity)
}

func TestWeatherService_CachesByCity(t *testing.T) {
	// Arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache, err := redisrepo.NewCacheRepo(client)
	require.NoError(t, err)

	var hits int32
	srv := newForecastServer(t, http.StatusOK, forecastFixture, &hits)
	svc := NewWeatherService(weatherConfig(srv.URL), cache)

	// Act
	first, err := svc.GetForecast(context.Background(), "Jakarta")
	require.NoError(t, err)
	second, err := svc.GetForecast(context.Background(), "jakarta")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "Повторный запрос должен обслуживаться из кеша")
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("weather:forecast:jakarta"))

	mr.FastForward(11 * time.Minute)
	_, err = svc.GetForecast(context.Background(), "Jakarta")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "После истечения TTL кеш должен обновляться")
}

func TestWeatherService_ReplacesCorruptCacheEntry(t *testing.T) {
	// Arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache, err := redisrepo.NewCacheRepo(client)
	require.NoError(t, err)
	require.NoError(t, mr.Set("weather:forecast:jakarta", "not-json"))

	var hits int32
	srv := newForecastServer(t, http.StatusOK, forecastFixture, &hits)
	svc := NewWeatherService(weatherConfig(srv.URL), cache)

	// Act
	forecast, err := svc.GetForecast(context.Background(), "Jakarta")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, forecast)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	raw, err := mr.Get("weather:forecast:jakarta")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(raw)), "Кеш должен содержать корректный JSON после перезаписи")

	_, err = svc.GetForecast(context.Background(), "Jakarta")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "Восстановленная запись должна обслуживать повторный запрос")
}
