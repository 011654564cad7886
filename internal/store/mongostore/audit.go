package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

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
	return insert(ctx, s.col(colAuditLogs), l, "write audit log")
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	filter := bson.M{}
	if f.EntityType != "" {
		filter["entityType"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entityId"] = f.EntityID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return findAll[models.AuditLog](ctx, s.col(colAuditLogs), filter, opts, "list audit logs")
}
