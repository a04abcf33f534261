package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Поддерживаемые драйверы базы данных
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Weather  WeatherConfig
	Quiz     QuizConfig
	CORS     CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	// Driver: "postgres" или "sqlite". По умолчанию "sqlite" (локальный файл).
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath: путь к файлу SQLite (только для Driver="sqlite")
	SQLitePath string `mapstructure:"sqlite_path"`
	// MigrationsPath: каталог SQL-миграций для postgres
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff / MaxRetryBackoff: интервалы между попытками (в миллисекундах).
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
}

// WeatherConfig содержит настройки внешнего API прогноза погоды
type WeatherConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ForecastDays int    `mapstructure:"forecast_days"`
	TimeoutSec   int    `mapstructure:"timeout_sec"`
	CacheTTLSec  int    `mapstructure:"cache_ttl_sec"`
	DefaultCity  string `mapstructure:"default_city"`
}

// QuizConfig содержит настройки викторины и лидерборда
type QuizConfig struct {
	LeaderboardLimit int  `mapstructure:"leaderboard_limit"`
	SeedSamples      bool `mapstructure:"seed_samples"`
}

// CORSConfig содержит список разрешенных источников
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisEnabled сообщает, сконфигурирован ли Redis
func (r *RedisConfig) RedisEnabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// WeatherTimeout возвращает тайм-аут запроса к API погоды
func (w *WeatherConfig) WeatherTimeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

// WeatherCacheTTL возвращает время жизни кеша прогноза
func (w *WeatherConfig) WeatherCacheTTL() time.Duration {
	return time.Duration(w.CacheTTLSec) * time.Second
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readTimeout", 15)
	vip.SetDefault("server.writeTimeout", 15)

	vip.SetDefault("database.driver", DriverSQLite)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.sqlite_path", "quiz_academy.db")
	vip.SetDefault("database.migrations_path", "migrations")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("jwt.expirationHrs", 24)

	vip.SetDefault("weather.base_url", "https://api.weatherapi.com/v1/forecast.json")
	vip.SetDefault("weather.forecast_days", 4)
	vip.SetDefault("weather.timeout_sec", 5)
	vip.SetDefault("weather.cache_ttl_sec", 600)
	vip.SetDefault("weather.default_city", "Jakarta")

	vip.SetDefault("quiz.leaderboard_limit", 10)
	vip.SetDefault("quiz.seed_samples", true)

	vip.SetDefault("cors.allow_origins", []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8000"})
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	setDefaults(vip)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.sqlite_path", "DATABASE_SQLITE_PATH")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET", "SECRET_KEY")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("weather.api_key", "WEATHER_API_KEY")
	vip.BindEnv("weather.base_url", "WEATHER_API_URL")
	vip.BindEnv("weather.default_city", "WEATHER_DEFAULT_CITY")

	vip.BindEnv("quiz.leaderboard_limit", "QUIZ_LEADERBOARD_LIMIT")
	vip.BindEnv("quiz.seed_samples", "QUIZ_SEED_SAMPLES")

	vip.BindEnv("cors.allow_origins", "CORS_ALLOW_ORIGINS")

	// 3. Файл конфигурации необязателен: без него используются переменные окружения/умолчания
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Списки из переменных окружения приходят одной строкой через запятую
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)
	cfg.CORS.AllowOrigins = splitList(cfg.CORS.AllowOrigins)

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Driver: %s", cfg.Database.Driver)
		if cfg.Database.Driver == DriverPostgres {
			log.Printf("Database Host: %s", cfg.Database.Host)
			log.Printf("Database Name: %s", cfg.Database.DBName)
		} else {
			log.Printf("SQLite Path: %s", cfg.Database.SQLitePath)
		}
		log.Printf("Redis Enabled: %t (mode: %s)", cfg.Redis.RedisEnabled(), cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Weather API Key Set: %t", cfg.Weather.APIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required when database driver is sqlite (check DATABASE_SQLITE_PATH env var)")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Weather.ForecastDays <= 0 {
		return fmt.Errorf("weather forecast_days must be positive")
	}
	if c.Quiz.LeaderboardLimit <= 0 {
		return fmt.Errorf("quiz leaderboard_limit must be positive")
	}

	// Отсутствие ключа погоды - не ошибка: виджет работает в деградированном режиме
	if c.Weather.APIKey == "" {
		log.Println("Warning: WEATHER_API_KEY is not set, weather widget will run in degraded mode.")
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
