package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

type LogOptions struct {
	UserID      string
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Writer records audit entries. A failed write is logged and never fails
// the operation being audited.
type Writer struct {
	trail store.AuditTrail
	log   *zap.Logger
}

func NewWriter(trail store.AuditTrail, log *zap.Logger) *Writer {
	return &Writer{trail: trail, log: log}
}

func (w *Writer) WriteLog(ctx context.Context, opts LogOptions) {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := w.trail.WriteAuditLog(ctx, &entry); err != nil {
		w.log.Error("audit log not written",
			zap.String("entity_type", opts.EntityType),
			zap.String("entity_id", opts.EntityID),
			zap.Error(err),
		)
	}
}

// snapshot renders v as JSON; jsonb columns need "null" rather than "".
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
