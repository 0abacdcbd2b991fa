package sqlitekv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// record is one key/value row. Every day's checklist is one row.
type record struct {
	Key       string `gorm:"column:date_key;primaryKey"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (record) TableName() string { return "checklists" }

// Store is a key-value medium backed by a single SQLite table.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at dsn and migrates the table.
// log receives GORM's slow query and error reports; nil disables them.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if dsn == "" {
		dsn = "daylist.db"
	}

	if err := prepareDir(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec record
	err := s.db.WithContext(ctx).Where("date_key = ?", key).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return rec.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	rec := record{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(log *zap.Logger) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	level := logger.Warn
	if log.Core().Enabled(zapcore.DebugLevel) {
		level = logger.Info
	}
	return logger.New(
		zap.NewStdLog(log.Named("sqlite")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// dbFile returns the database file a DSN points at. Both "checklists.db" and
// "file:checklists.db?_busy_timeout=5000" name a file; ":memory:" and
// mode=memory URIs do not.
func dbFile(dsn string) (string, bool) {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return "", false
	}
	return path, true
}

// prepareDir creates the directory holding the database file.
func prepareDir(dsn string) error {
	path, ok := dbFile(dsn)
	if !ok {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
