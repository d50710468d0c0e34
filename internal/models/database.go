package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DB is the database used by the backend.
var DB *gorm.DB

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	config := &gorm.Config{
		// Store generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	// Connect once with foreign keys disabled so that the schema
	// migration can copy and recreate tables freely. sqlite does not
	// support ALTER COLUMN, so gorm recreates tables on migration.
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Reconnect with foreign keys enabled
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	dsn = fmt.Sprintf("%s%s_pragma=foreign_keys(1)", dsn, separator)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection prevents SQLITE_BUSY errors
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	for name, callback := range map[string]func(*gorm.DB){
		"maxim:after_query": queryCallback,
	} {
		err = db.Callback().Query().After("*").Register(name, callback)
		if err != nil {
			return err
		}
	}

	for name, callback := range map[string]func(*gorm.DB){
		"maxim:after_write":         writeCallback,
		"maxim:after_write_general": generalCallback,
	} {
		err = db.Callback().Create().After("*").Register(name, callback)
		if err != nil {
			return err
		}

		err = db.Callback().Update().After("*").Register(name, callback)
		if err != nil {
			return err
		}
	}

	err = db.Callback().Query().After("*").Register("maxim:after_query_general", generalCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Delete().After("*").Register("maxim:after_delete_general", generalCallback)
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// writeCallback inspects errors returned by the database for create and
// update calls and replaces them with user friendly ones
func writeCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// One budget row per category and period
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: budgets.period_id, budgets.category_id") {
		db.Error = errors.New("a budget already exists for this category in this period")
	}

	// Notifications are idempotent per timeframe and date range
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: notifications.timeframe, notifications.range_start, notifications.range_end") {
		db.Error = errors.New("a notification for this timeframe and date range already exists")
	}

	// Category names are unique
	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: categories.name") {
		db.Error = errors.New("a category with this name already exists")
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" {
		// We log the error and provide a general error message so that
		// server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		Parameters{}, CategoryShare{}, Category{}, Period{}, Budget{},
		Transaction{}, DeferredTithing{}, Alert{}, ChatThread{}, ChatMessage{},
		Notification{}, ExportRecord{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
