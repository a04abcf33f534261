package dto

// ForecastDayDTO - прогноз на один день
type ForecastDayDTO struct {
	Date      string `json:"date"`     // YYYY-MM-DD
	DayName   string `json:"day_name"` // английское название дня недели
	MaxTemp   int    `json:"max_temp"`
	MinTemp   int    `json:"min_temp"`
	Condition string `json:"condition"`
	Icon      string `json:"icon"`
}

// WeatherResponse - ответ виджета погоды.
// При сбое внешнего API Forecast пуст, а Error и ErrorType описывают причину.
type WeatherResponse struct {
	City      string            `json:"city"`
	Forecast  []*ForecastDayDTO `json:"forecast"`
	Error     string            `json:"error,omitempty"`
	ErrorType string            `json:"error_type,omitempty"`
}
