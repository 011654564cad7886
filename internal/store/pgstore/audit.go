package pgstore

import (
	"context"
	"time"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func (s *Store) WriteAuditLog(ctx context.Context, l *models.AuditLog) error {
	if l.ID == "" {
		l.ID = store.NewID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return translate(s.db.WithContext(ctx).Create(l).Error, "write audit log")
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	db := s.db.WithContext(ctx).Order("created_at desc")
	if f.EntityType != "" {
		db = db.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		db = db.Where("entity_id = ?", f.EntityID)
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	var res []models.AuditLog
	err := db.Find(&res).Error
	return res, translate(err, "list audit logs")
}
