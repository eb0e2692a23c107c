package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/kbsvc/kanban-board-api/internal/config"
	"github.com/kbsvc/kanban-board-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the database selected by the configured connection string.
// postgres://, mysql:// and sqlite:// URLs select their respective drivers;
// the empty string maps to an in-memory SQLite database.
func Connect(cfg *config.Config) error {
	dialector, err := dialectorFor(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case url == "":
		return sqlite.Open(":memory:"), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(strings.TrimPrefix(url, "mysql://")), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, fmt.Errorf("unsupported database URL: %q", url)
	}
}

// Migrate creates or updates the tasks schema.
func Migrate() error {
	log.Println("Running database migrations...")
	if err := DB.AutoMigrate(&models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
