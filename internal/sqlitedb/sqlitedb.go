// Package sqlitedb opens single-connection SQLite handles shared by the API server
// database and the client session store. It carries no schema of its own.
package sqlitedb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const memoryPathPrefix = "file:"

// Open establishes a single-connection SQLite handle, creating the parent directory when needed.
// Constraint violations surface as gorm sentinel errors such as gorm.ErrDuplicatedKey.
func Open(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if !strings.HasPrefix(path, memoryPathPrefix) && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if logger != nil {
		logger.Debug("sqlite opened", zap.String("path", path))
	}
	return db, nil
}
