package database

import (
	"fmt"

	"cards-app/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured store. Driver errors are translated so
// unique violations surface as gorm.ErrDuplicatedKey on both backends.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// domainModels are the tables owned by the create/drop/seed commands.
func domainModels() []any {
	return []any{&models.User{}, &models.Card{}}
}

// CreateTables creates the users and cards tables if they do not exist.
func CreateTables(db *gorm.DB) error {
	return db.AutoMigrate(domainModels()...)
}

// DropTables removes the users and cards tables.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(domainModels()...)
}

// MigrateLogs creates the table backing persisted log records.
func MigrateLogs(db *gorm.DB) error {
	return db.AutoMigrate(&models.LogEntry{})
}
