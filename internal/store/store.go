// Package store defines the persistence collaborators of the service: the
// ledger of categories, parties and stock entries, the directory of roles
// and users, and the audit trail.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yarn-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

// EntryFilter narrows entry listings. Zero fields do not filter.
type EntryFilter struct {
	CategoryID string
	LotNo      string
	From       time.Time // inclusive, on entry date
	To         time.Time // exclusive, on entry date
}

// AuditFilter narrows audit listings. Limit 0 means no limit.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}

type Ledger interface {
	CreateCategory(ctx context.Context, c *models.YarnCategory) error
	UpdateCategory(ctx context.Context, c *models.YarnCategory) error
	GetCategory(ctx context.Context, id string) (models.YarnCategory, error)
	ListCategories(ctx context.Context) ([]models.YarnCategory, error)
	DeleteCategory(ctx context.Context, id string) error
	CategoryInUse(ctx context.Context, id string) (bool, error)

	CreateParty(ctx context.Context, p *models.Party) error
	UpdateParty(ctx context.Context, p *models.Party) error
	GetParty(ctx context.Context, id string) (models.Party, error)
	ListParties(ctx context.Context) ([]models.Party, error)
	DeleteParty(ctx context.Context, id string) error
	PartyInUse(ctx context.Context, id string) (bool, error)

	CreateInEntry(ctx context.Context, e *models.InEntry) error
	UpdateInEntry(ctx context.Context, e *models.InEntry) error
	GetInEntry(ctx context.Context, id string) (models.InEntry, error)
	ListInEntries(ctx context.Context, f EntryFilter) ([]models.InEntry, error)

	CreateExEntry(ctx context.Context, e *models.ExEntry) error
	GetExEntry(ctx context.Context, id string) (models.ExEntry, error)
	ListExEntries(ctx context.Context, f EntryFilter) ([]models.ExEntry, error)
}

type Directory interface {
	CreateRole(ctx context.Context, r *models.Role) error
	UpdateRole(ctx context.Context, r *models.Role) error
	GetRole(ctx context.Context, id string) (models.Role, error)
	GetRoleByName(ctx context.Context, name string) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	DeleteRole(ctx context.Context, id string) error
	RoleInUse(ctx context.Context, id string) (bool, error)

	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// ListUsers returns users that are not soft-deleted.
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)
}

type AuditTrail interface {
	WriteAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)
}

type Store interface {
	Ledger
	Directory
	AuditTrail
	Close(ctx context.Context) error
}

// LotEntries are the in and ex entries of a category, or of one lot of it.
type LotEntries struct {
	InEntries []models.InEntry
	ExEntries []models.ExEntry
}

// FindLot loads the entries of categoryID. An empty lotNo loads every lot.
func FindLot(ctx context.Context, l Ledger, categoryID, lotNo string) (LotEntries, error) {
	f := EntryFilter{CategoryID: categoryID, LotNo: lotNo}
	in, err := l.ListInEntries(ctx, f)
	if err != nil {
		return LotEntries{}, fmt.Errorf("list in entries: %w", err)
	}
	ex, err := l.ListExEntries(ctx, f)
	if err != nil {
		return LotEntries{}, fmt.Errorf("list ex entries: %w", err)
	}
	return LotEntries{InEntries: in, ExEntries: ex}, nil
}

// GetRolePermissions returns the permission tree of roleID, or nil when the
// id is empty or names no role.
func GetRolePermissions(ctx context.Context, d Directory, roleID string) (*models.RolePermissions, error) {
	if roleID == "" {
		return nil, nil
	}
	role, err := d.GetRole(ctx, roleID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role.Permissions, nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// Prepare fills the identifier and creation timestamps of a new record.
func Prepare(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = NewID()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// Matches reports whether an entry with the given keys passes f.
func (f EntryFilter) Matches(categoryID, lotNo string, entryDate time.Time) bool {
	if f.CategoryID != "" && f.CategoryID != categoryID {
		return false
	}
	if f.LotNo != "" && f.LotNo != lotNo {
		return false
	}
	if !f.From.IsZero() && entryDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !entryDate.Before(f.To) {
		return false
	}
	return true
}
