package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// DatabasePath returns the on-device sqlite file path.
// Defaults to ./pitix_local.db next to the binary.
func DatabasePath() string {
	path := strings.TrimSpace(os.Getenv("PITIX_LOCAL_DB_PATH"))
	if path == "" {
		path = "pitix_local.db"
	}
	return path
}

// OpenDatabase opens a sqlite database at the given path with WAL and a
// busy timeout so the sync engine and the UI thread can share the file.
// Tests pass an in-memory DSN here.
func OpenDatabase(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
		dsn = fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), initConfig())
	if err != nil {
		return nil, err
	}

	// sqlite serializes writers; keep the pool at one writer connection
	// to avoid SQLITE_BUSY under concurrent facade/engine access.
	if sqlDB, derr := gdb.DB(); derr == nil && sqlDB != nil {
		sqlDB.SetMaxOpenConns(intFromEnv("DB_MAX_OPEN_CONNS", 1))
		sqlDB.SetConnMaxIdleTime(time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second)
	}

	if envBool("OTEL_GORM") {
		if pluginErr := gdb.Use(otelgorm.NewPlugin()); pluginErr != nil {
			log.Printf("db opened but failed to install otelgorm plugin: %v", pluginErr)
		}
	}
	return gdb, nil
}

// ConnectDatabaseWithRetry opens the device database and sets the global DB.
// Call this from main() before constructing the stores.
func ConnectDatabaseWithRetry() {
	var attempt int
	for {
		attempt++
		gdb, err := OpenDatabase(DatabasePath())
		if err == nil {
			db = gdb
			log.Printf("opened local database %s (attempt=%d)", DatabasePath(), attempt)
			return
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to open local database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// InitConfig Initialize Config
func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

// InitNamingStrategy Init NamingStrategy
func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
