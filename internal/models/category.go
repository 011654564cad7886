package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// YarnCategory is a kind of yarn stocked in lots.
type YarnCategory struct {
	ID           string          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name         string          `gorm:"size:100;not null;uniqueIndex" bson:"name" json:"name"`
	Description  string          `gorm:"size:500" bson:"description,omitempty" json:"description,omitempty"`
	NoOfCones    int             `gorm:"not null" bson:"noOfCones" json:"noOfCones"`
	WeightPerBox decimal.Decimal `gorm:"type:numeric(12,3);not null" bson:"weightPerBox" json:"weightPerBox"`
	CreatedBy    string          `gorm:"size:36" bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Party is the counterparty a stock receipt comes from.
type Party struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name      string    `gorm:"size:100;not null" bson:"name" json:"name"`
	MobileNo  string    `gorm:"size:20" bson:"mobileNo" json:"mobileNo"`
	EmailID   string    `gorm:"size:100" bson:"emailId" json:"emailId"`
	CreatedBy string    `gorm:"size:36" bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
