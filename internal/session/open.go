package session

import (
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/config"
	"github.com/MarcoPoloResearchLab/pocketnotes/internal/sqlitedb"
	"go.uber.org/zap"
)

// Config selects and locates the session storage backend.
type Config struct {
	Driver string
	Path   string
	Logger *zap.Logger
}

// Open returns the configured Store. When the backend cannot be resolved or opened it
// degrades to UnavailableStore, so callers always observe a deterministic unauthenticated default.
func Open(cfg Config) Store {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Driver == config.SessionDriverMemory {
		return NewMemoryStore()
	}

	path := cfg.Path
	if path == "" {
		path = config.DefaultSessionPath(cfg.Driver)
	}
	if path == "" {
		logger.Warn("session storage unavailable: no storage location", zap.String("driver", cfg.Driver))
		return UnavailableStore{}
	}

	switch cfg.Driver {
	case config.SessionDriverBadger:
		store, err := OpenBadgerStore(path, logger)
		if err != nil {
			logger.Warn("session storage unavailable", zap.String("driver", cfg.Driver), zap.Error(err))
			return UnavailableStore{}
		}
		return store
	case config.SessionDriverSQLite, "":
		db, err := sqlitedb.Open(path, logger)
		if err != nil {
			logger.Warn("session storage unavailable", zap.String("driver", config.SessionDriverSQLite), zap.Error(err))
			return UnavailableStore{}
		}
		store, err := NewSQLiteStore(db, logger)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			logger.Warn("session storage unavailable", zap.String("driver", config.SessionDriverSQLite), zap.Error(err))
			return UnavailableStore{}
		}
		return store
	default:
		logger.Warn("session storage unavailable: unknown driver", zap.String("driver", cfg.Driver))
		return UnavailableStore{}
	}
}
