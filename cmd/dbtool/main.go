package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/yourusername/quiz-academy/internal/config"
	pgRepo "github.com/yourusername/quiz-academy/internal/repository/postgres"
	"github.com/yourusername/quiz-academy/internal/service"
	"github.com/yourusername/quiz-academy/pkg/database"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("dbtool: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Обслуживание базы данных quiz-academy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "путь к YAML конфигурации")
	cmd.AddCommand(newMigrateCmd(), newSeedCmd(), newCheckCmd(), newVersionCmd(), newForceCmd())
	return cmd
}

// newMigrateCmd применяет схему так же, как при старте API
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := database.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			return database.MigrateDB(db, cfg.Database)
		},
	}
}

// newSeedCmd загружает демонстрационные вопросы в пустой банк
func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Загрузить демонстрационные вопросы, если банк пуст",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := database.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			if err := database.MigrateDB(db, cfg.Database); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			inserted, err := service.SeedSampleQuestions(ctx, pgRepo.NewQuestionRepo(db))
			if err != nil {
				return err
			}
			fmt.Printf("Добавлено вопросов: %d\n", inserted)
			return nil
		},
	}
}

// newCheckCmd проверяет подключение и выводит таблицы с количеством строк
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Проверить подключение к базе данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := database.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			sqlDB, err := database.GetSQLDB(db)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := sqlDB.Ping(); err != nil {
				return fmt.Errorf("база данных недоступна: %w", err)
			}
			fmt.Printf("Подключение успешно (драйвер: %s)\n", cfg.Database.Driver)

			versionQuery := "SELECT version()"
			if cfg.Database.Driver == config.DriverSQLite {
				versionQuery = "SELECT sqlite_version()"
			}
			var version string
			if err := db.Raw(versionQuery).Scan(&version).Error; err == nil {
				fmt.Printf("Версия сервера: %s\n", version)
			}

			tables, err := db.Migrator().GetTables()
			if err != nil {
				return fmt.Errorf("не удалось получить список таблиц: %w", err)
			}
			if len(tables) == 0 {
				fmt.Println("Таблицы не найдены, выполните 'dbtool migrate'")
				return nil
			}
			for _, table := range tables {
				var count int64
				if err := db.Table(table).Count(&count).Error; err != nil {
					fmt.Printf("  %s: ошибка подсчета (%v)\n", table, err)
					continue
				}
				fmt.Printf("  %s: %d\n", table, count)
			}
			return nil
		},
	}
}

// newVersionCmd показывает текущую версию миграций postgres
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию миграций (только postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeFn()

			version, dirty, err := m.Version()
			if errors.Is(err, migrateV4.ErrNilVersion) {
				fmt.Println("Миграции еще не применялись")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Версия: %d, dirty: %t\n", version, dirty)
			return nil
		},
	}
}

// newForceCmd снимает dirty-состояние после неудачной миграции
func newForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Принудительно выставить версию миграций (только postgres)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректная версия %q: %w", args[0], err)
			}

			m, closeFn, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Printf("Forcing migration version to %d to clean dirty state...\n", version)
			if err := m.Force(version); err != nil {
				return fmt.Errorf("failed to force version: %w", err)
			}
			fmt.Println("Success! Dirty state cleaned. You can now run the app normally.")
			return nil
		},
	}
}

// openMigrator подключается к postgres напрямую через lib/pq, минуя GORM
func openMigrator() (*migrateV4.Migrate, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("команда доступна только для postgres (текущий драйвер: %s)", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	m, err := database.NewMigrator(db, cfg.Database.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, func() { db.Close() }, nil
}
