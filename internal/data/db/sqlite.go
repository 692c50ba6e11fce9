package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/edupulse-backend/internal/pkg/logger"
	"github.com/yungbote/edupulse-backend/internal/platform/envutil"
)

// SQLiteService backs local runs and tests with a single-file (or in-memory) database.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(logg *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")

	path = strings.TrimSpace(path)
	if path == "" {
		path = envutil.String("SQLITE_PATH", "edupulse.db")
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	// sqlite serializes writers; one connection keeps transactions from tripping SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	serviceLog.Info("opened sqlite database", "path", path)
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func (s *SQLiteService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

// Open selects the driver named by DB_DRIVER (postgres by default).
func Open(logg *logger.Logger) (*gorm.DB, error) {
	switch strings.ToLower(envutil.String("DB_DRIVER", "postgres")) {
	case "sqlite", "sqlite3":
		svc, err := NewSQLiteService(logg, "")
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	default:
		svc, err := NewPostgresService(logg)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	}
}
