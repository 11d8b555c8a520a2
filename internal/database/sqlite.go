package database

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/notes"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/sqlitedb"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite opens the API server database and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := sqlitedb.Open(path, logger)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&users.User{}, &notes.Note{}, &migrationRecord{}); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
