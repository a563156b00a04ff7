package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the backing store. With DATABASE_URL set it connects to
// MySQL (with retries, the container may still be starting); without it we
// fall back to a local SQLite file, which is only acceptable outside
// production.
func InitDB() {
	logLevel := logger.Info
	if os.Getenv("GIN_MODE") == "release" {
		logLevel = logger.Warn
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatalf("DATABASE_URL is not set and SQLite fallback is disabled in release mode")
		}
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "parking.db"
		}
		var err error
		DB, err = gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			log.Fatalf("Failed to open sqlite database %s: %v", path, err)
		}
		log.Printf("DATABASE_URL not set, using local sqlite store at %s", path)
		return
	}

	var err error
	maxRetries := 5
	retryInterval := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		log.Fatalf("Failed to open database after %d attempts: %v", maxRetries, err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Database initialized successfully with GORM")
}

// MaskedDSN reports whether the primary connection string is configured
// without ever echoing it, for the diagnostic endpoint.
func MaskedDSN() string {
	if os.Getenv("DATABASE_URL") == "" {
		return "(not set, sqlite fallback)"
	}
	return "(set, hidden)"
}

// Ping is a trivial connectivity probe.
func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
