// Package pgstore implements the store on PostgreSQL through gorm.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	log.Info("database connected, migration complete")
	return s, nil
}

// New wraps an open gorm handle without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.YarnCategory{},
		&models.Party{},
		&models.InEntry{},
		&models.ExEntry{},
		&models.Role{},
		&models.User{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the store sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// affected turns a zero-row write into ErrNotFound.
func affected(res *gorm.DB, what string) error {
	if res.Error != nil {
		return translate(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func exists(db *gorm.DB) (bool, error) {
	var n int64
	if err := db.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func entryScope(f store.EntryFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CategoryID != "" {
			db = db.Where("category_id = ?", f.CategoryID)
		}
		if f.LotNo != "" {
			db = db.Where("lot_no = ?", f.LotNo)
		}
		if !f.From.IsZero() {
			db = db.Where("entry_date >= ?", f.From)
		}
		if !f.To.IsZero() {
			db = db.Where("entry_date < ?", f.To)
		}
		return db.Order("entry_date asc, created_at asc")
	}
}
