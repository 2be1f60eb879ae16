package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"medstore/internal/config"
	"medstore/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the database named by driver (config.DriverPostgres or config.DriverSQLite).
func Open(driver, dsn string) (*gorm.DB, error) {
	return OpenWithLogWriter(driver, dsn, os.Stdout)
}

// newLogger reports slow queries and errors to w. Missing rows are an expected
// outcome of lookups such as an absent cart and are not logged.
func newLogger(w io.Writer) gormlogger.Interface {
	return gormlogger.New(log.New(w, "\r\n", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// OpenWithLogWriter is Open with an explicit sink for gorm's log output.
func OpenWithLogWriter(driver, dsn string, w io.Writer) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(w),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Medicine{},
		&models.Cart{},
		&models.Order{},
		&models.User{},
		&models.Admin{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
