package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	CreatedAt time.Time `gorm:"index" bson:"createdAt" json:"createdAt"`

	UserID   string `gorm:"size:36;index" bson:"userId" json:"userId"`
	UserName string `gorm:"size:100" bson:"userName" json:"userName"` // denormalized

	// e.g. "category", "in_entry", "role"
	EntityType string      `gorm:"size:50;index" bson:"entityType" json:"entityType"`
	EntityID   string      `gorm:"size:36;index" bson:"entityId" json:"entityId"`
	Action     AuditAction `gorm:"size:20" bson:"action" json:"action"`

	Description string `gorm:"size:255" bson:"description" json:"description"`

	// JSON snapshots, "null" when absent
	BeforeData string `gorm:"type:jsonb" bson:"beforeData" json:"beforeData"`
	AfterData  string `gorm:"type:jsonb" bson:"afterData" json:"afterData"`
}
