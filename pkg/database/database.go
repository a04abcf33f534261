package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quiz-academy/internal/config"
	"github.com/yourusername/quiz-academy/internal/domain/entity"
)

// NewDB создает подключение к базе данных согласно конфигурации (postgres или sqlite)
func NewDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresDB(cfg.PostgresConnectionString())
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// NewPostgresDB создает новое подключение к PostgreSQL
func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// NewSQLiteDB открывает локальную базу SQLite (pure Go драйвер, без cgo).
// SQLite допускает одного писателя, поэтому пул ограничен одним соединением.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// MigrateDB применяет схему: SQL-миграции для postgres, AutoMigrate для sqlite
func MigrateDB(db *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.Driver == config.DriverSQLite {
		return AutoMigrate(db)
	}
	return MigratePostgres(db, cfg.MigrationsPath)
}

// AutoMigrate создает таблицы по сущностям GORM
func AutoMigrate(db *gorm.DB) error {
	log.Println("Запуск AutoMigrate для локальной базы данных...")
	if err := db.AutoMigrate(&entity.User{}, &entity.QuizQuestion{}, &entity.UserScore{}); err != nil {
		return fmt.Errorf("ошибка AutoMigrate: %w", err)
	}
	log.Println("AutoMigrate завершен.")
	return nil
}

// MigratePostgres применяет SQL-миграции из каталога migrationsPath
func MigratePostgres(db *gorm.DB, migrationsPath string) error {
	log.Println("Запуск применения миграций базы данных...")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("не удалось получить *sql.DB из *gorm.DB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("не удалось проверить подключение к БД перед миграцией: %w", err)
	}

	m, err := NewMigrator(sqlDB, migrationsPath)
	if err != nil {
		return err
	}

	log.Println("Применяем миграции 'up'...")
	err = m.Up()
	if err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
		log.Printf("Ошибка применения миграций: %v", err)
		return fmt.Errorf("ошибка применения миграций 'up': %w", err)
	} else if errors.Is(err, migrateV4.ErrNoChange) {
		log.Println("Изменений в миграциях не найдено, база данных уже актуальна.")
	} else {
		log.Println("Миграции успешно применены.")
	}

	return nil
}

// NewMigrator создает экземпляр migrate для postgres поверх существующего *sql.DB
func NewMigrator(sqlDB *sql.DB, migrationsPath string) (*migrateV4.Migrate, error) {
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать драйвер postgres для migrate: %w", err)
	}

	m, err := migrateV4.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}
	return m, nil
}

// GetSQLDB возвращает базовый *sql.DB из *gorm.DB
func GetSQLDB(gormDB *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, nil
}
