package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
	"yarn-backend/internal/store/memstore"
)

type failingTrail struct{ store.AuditTrail }

func (failingTrail) WriteAuditLog(context.Context, *models.AuditLog) error {
	return errors.New("disk full")
}

func TestWriteLogSnapshots(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	w := NewWriter(s, zap.NewNop())

	w.WriteLog(ctx, LogOptions{
		UserID:     "u1",
		EntityType: "party",
		EntityID:   "p1",
		Action:     models.AuditActionCreate,
		After:      models.Party{ID: "p1", Name: "Mill"},
	})

	logs, err := s.ListAuditLogs(ctx, store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "null", logs[0].BeforeData)
	require.Contains(t, logs[0].AfterData, `"name":"Mill"`)
}

func TestWriteLogFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	w := NewWriter(failingTrail{}, zap.New(core))

	w.WriteLog(context.Background(), LogOptions{EntityType: "role", EntityID: "r1"})

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "r1", logs.All()[0].ContextMap()["entity_id"])
}
