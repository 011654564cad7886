package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"yarn-backend/internal/models"
	"yarn-backend/internal/store"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	cat := models.YarnCategory{Name: "Cotton 40s", WeightPerBox: decimal.RequireFromString("36.25")}
	require.NoError(t, s.CreateCategory(ctx, &cat))
	require.NotEmpty(t, cat.ID)
	require.False(t, cat.CreatedAt.IsZero())

	dup := models.YarnCategory{Name: "Cotton 40s"}
	require.ErrorIs(t, s.CreateCategory(ctx, &dup), store.ErrDuplicate)

	cat.Description = "combed"
	require.NoError(t, s.UpdateCategory(ctx, &cat))
	got, err := s.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Equal(t, "combed", got.Description)

	inUse, err := s.CategoryInUse(ctx, cat.ID)
	require.NoError(t, err)
	require.False(t, inUse)

	require.NoError(t, s.DeleteCategory(ctx, cat.ID))
	_, err = s.GetCategory(ctx, cat.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.DeleteCategory(ctx, cat.ID), store.ErrNotFound)
}

func TestFindLotFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := New()

	entries := []models.InEntry{
		{CategoryID: "c1", LotNo: "A", EntryDate: day(3), NoOfBoxes: 1, WeightInKg: decimal.NewFromInt(10)},
		{CategoryID: "c1", LotNo: "A", EntryDate: day(1), NoOfBoxes: 1, WeightInKg: decimal.NewFromInt(10)},
		{CategoryID: "c1", LotNo: "B", EntryDate: day(2), NoOfBoxes: 1, WeightInKg: decimal.NewFromInt(10)},
		{CategoryID: "c2", LotNo: "A", EntryDate: day(2), NoOfBoxes: 1, WeightInKg: decimal.NewFromInt(10)},
	}
	for i := range entries {
		require.NoError(t, s.CreateInEntry(ctx, &entries[i]))
	}
	out := models.ExEntry{CategoryID: "c1", LotNo: "A", EntryDate: day(4), TakingWeightInKg: decimal.NewFromInt(5)}
	require.NoError(t, s.CreateExEntry(ctx, &out))

	lot, err := store.FindLot(ctx, s, "c1", "A")
	require.NoError(t, err)
	require.Len(t, lot.InEntries, 2)
	require.True(t, lot.InEntries[0].EntryDate.Before(lot.InEntries[1].EntryDate))
	require.Len(t, lot.ExEntries, 1)

	all, err := store.FindLot(ctx, s, "c1", "")
	require.NoError(t, err)
	require.Len(t, all.InEntries, 3)

	ranged, err := s.ListInEntries(ctx, store.EntryFilter{From: day(2), To: day(3)})
	require.NoError(t, err)
	require.Len(t, ranged, 2)

	inUse, err := s.CategoryInUse(ctx, "c2")
	require.NoError(t, err)
	require.True(t, inUse)
}

func TestRolePermissionsLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	role := models.Role{Name: models.AdminRoleName, Permissions: models.FullAccess()}
	require.NoError(t, s.CreateRole(ctx, &role))

	perms, err := store.GetRolePermissions(ctx, s, role.ID)
	require.NoError(t, err)
	require.NotNil(t, perms)
	require.True(t, perms.Accounts.Role.Delete)

	perms, err = store.GetRolePermissions(ctx, s, "missing")
	require.NoError(t, err)
	require.Nil(t, perms)

	perms, err = store.GetRolePermissions(ctx, s, "")
	require.NoError(t, err)
	require.Nil(t, perms)
}

func TestUsersSoftDeletedHiddenFromList(t *testing.T) {
	ctx := context.Background()
	s := New()

	roleID := "r1"
	joined := models.User{Email: "a@example.com", Status: models.UserStatusJoined, RoleID: &roleID}
	gone := models.User{Email: "b@example.com", Status: models.UserStatusJoined, IsDeleted: true, RoleID: &roleID}
	require.NoError(t, s.CreateUser(ctx, &joined))
	require.NoError(t, s.CreateUser(ctx, &gone))
	require.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "a@example.com"}), store.ErrDuplicate)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, joined.ID, users[0].ID)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	inUse, err := s.RoleInUse(ctx, roleID)
	require.NoError(t, err)
	require.True(t, inUse)
}

func TestAuditLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.WriteAuditLog(ctx, &models.AuditLog{EntityType: "category", EntityID: id}))
	}
	require.NoError(t, s.WriteAuditLog(ctx, &models.AuditLog{EntityType: "party", EntityID: "9"}))

	logs, err := s.ListAuditLogs(ctx, store.AuditFilter{EntityType: "category", Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "3", logs[0].EntityID)
	require.Equal(t, "2", logs[1].EntityID)
}
