package database

import (
	"fmt"
	"time"

	"meubolso/internal/logger"
	"meubolso/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	driver string
	dsn    string
}

// NewManager creates a new database manager. The driver is selected by
// config: "sqlite" opens an embedded file store, anything else connects
// to PostgreSQL.
func NewManager(config *Config) (*Manager, error) {
	if config.Driver == "sqlite" {
		db, err := gorm.Open(sqlite.Open(config.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return &Manager{db: db, driver: "sqlite"}, nil
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  config.DSN(),
		PreferSimpleProtocol: true, // Required for pooled connections; harmless for direct ones
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, driver: "postgres", dsn: config.URL()}, nil
}

// RunMigrations brings the schema up to date. PostgreSQL uses versioned
// SQL migrations from the migrations/ directory; sqlite relies on
// AutoMigrate since golang-migrate has no pure-Go sqlite driver here.
func (m *Manager) RunMigrations() error {
	if m.driver == "sqlite" {
		logger.Get().Info("Running sqlite auto-migration...")
		return m.db.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.Transaction{},
			&models.ShoppingCategory{},
			&models.Product{},
			&models.ShoppingList{},
			&models.ShoppingListItem{},
			&models.AuditLog{},
		)
	}

	logger.Get().Info("Running database migrations...")

	mig, err := migrate.New("file://migrations", m.dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}
