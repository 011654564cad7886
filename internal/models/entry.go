package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InEntry records goods arriving into a lot.
type InEntry struct {
	ID           string          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	EntryDate    time.Time       `gorm:"index;not null" bson:"entryDate" json:"entryDate"`
	CategoryID   string          `gorm:"size:36;index:idx_in_entries_lot;not null" bson:"categoryId" json:"categoryId"`
	LotNo        string          `gorm:"size:50;index:idx_in_entries_lot;not null" bson:"lotNo" json:"lotNo"`
	PurchaseDate time.Time       `gorm:"not null" bson:"purchaseDate" json:"purchaseDate"`
	PartyID      string          `gorm:"size:36;index;not null" bson:"partyId" json:"partyId"`
	NoOfBoxes    int             `gorm:"not null" bson:"noOfBoxes" json:"noOfBoxes"`
	WeightInKg   decimal.Decimal `gorm:"type:numeric(14,3);not null" bson:"weightInKg" json:"weightInKg"`
	CreatedBy    string          `gorm:"size:36" bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ExEntry records goods leaving a lot. It points at the lot by category and
// lot number only, never at a particular InEntry.
type ExEntry struct {
	ID               string          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	EntryDate        time.Time       `gorm:"index;not null" bson:"entryDate" json:"entryDate"`
	CategoryID       string          `gorm:"size:36;index:idx_ex_entries_lot;not null" bson:"categoryId" json:"categoryId"`
	LotNo            string          `gorm:"size:50;index:idx_ex_entries_lot;not null" bson:"lotNo" json:"lotNo"`
	TakingWeightInKg decimal.Decimal `gorm:"type:numeric(14,3);not null" bson:"takingWeightInKg" json:"takingWeightInKg"`
	CreatedBy        string          `gorm:"size:36" bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}
