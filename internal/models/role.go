package models

import "time"

// AdminRoleName is the built-in role that can be neither edited nor deleted.
const AdminRoleName = "Admin"

type Role struct {
	ID          string          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name        string          `gorm:"size:100;not null;uniqueIndex" bson:"name" json:"name"`
	Permissions RolePermissions `gorm:"serializer:json;type:jsonb;not null" bson:"permissions" json:"permissions"`
	CreatedBy   string          `gorm:"size:36" bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (r Role) IsAdmin() bool { return r.Name == AdminRoleName }

type ViewPermission struct {
	View bool `bson:"view" json:"view"`
}

type CreatePermission struct {
	Create bool `bson:"create" json:"create"`
}

type CRUDPermission struct {
	View   bool `bson:"view" json:"view"`
	Create bool `bson:"create" json:"create"`
	Edit   bool `bson:"edit" json:"edit"`
	Delete bool `bson:"delete" json:"delete"`
}

type MasterPermissions struct {
	Category CRUDPermission `bson:"category" json:"category"`
	Party    CRUDPermission `bson:"party" json:"party"`
}

type AccountPermissions struct {
	User CRUDPermission `bson:"user" json:"user"`
	Role CRUDPermission `bson:"role" json:"role"`
}

// RolePermissions is the fixed-shape permission tree of a role.
type RolePermissions struct {
	Dashboard ViewPermission     `bson:"dashboard" json:"dashboard"`
	InEntry   CreatePermission   `bson:"inEntry" json:"inEntry"`
	OutEntry  CreatePermission   `bson:"outEntry" json:"outEntry"`
	Master    MasterPermissions  `bson:"master" json:"master"`
	Accounts  AccountPermissions `bson:"accounts" json:"accounts"`
}

// FullAccess returns a tree with every flag set, as held by the Admin role.
func FullAccess() RolePermissions {
	all := CRUDPermission{View: true, Create: true, Edit: true, Delete: true}
	return RolePermissions{
		Dashboard: ViewPermission{View: true},
		InEntry:   CreatePermission{Create: true},
		OutEntry:  CreatePermission{Create: true},
		Master:    MasterPermissions{Category: all, Party: all},
		Accounts:  AccountPermissions{User: all, Role: all},
	}
}

// Tree returns the permissions as nested maps keyed like the JSON form,
// e.g. tree["master"]["category"]["view"].
func (p *RolePermissions) Tree() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"dashboard": map[string]any{"view": p.Dashboard.View},
		"inEntry":   map[string]any{"create": p.InEntry.Create},
		"outEntry":  map[string]any{"create": p.OutEntry.Create},
		"master": map[string]any{
			"category": p.Master.Category.tree(),
			"party":    p.Master.Party.tree(),
		},
		"accounts": map[string]any{
			"user": p.Accounts.User.tree(),
			"role": p.Accounts.Role.tree(),
		},
	}
}

func (c CRUDPermission) tree() map[string]any {
	return map[string]any{
		"view":   c.View,
		"create": c.Create,
		"edit":   c.Edit,
		"delete": c.Delete,
	}
}
