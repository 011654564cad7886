package models

import "time"

type UserStatus string

const (
	UserStatusInvited UserStatus = "invited"
	UserStatusJoined  UserStatus = "joined"
)

// User is an account. Invited users have no password yet; only joined users
// are soft-deleted, invited ones are removed outright.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Email        string     `gorm:"size:100;not null;uniqueIndex" bson:"email" json:"email"`
	Name         string     `gorm:"size:100" bson:"name,omitempty" json:"name,omitempty"`
	RoleID       *string    `gorm:"size:36;index" bson:"roleId,omitempty" json:"roleId,omitempty"`
	Status       UserStatus `gorm:"size:20;not null" bson:"status" json:"status"`
	PasswordHash string     `gorm:"size:255" bson:"passwordHash,omitempty" json:"-"`
	IsDeleted    bool       `gorm:"not null;default:false" bson:"isDeleted" json:"isDeleted"`
	InvitedBy    string     `gorm:"size:36" bson:"invitedBy,omitempty" json:"invitedBy,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u User) Active() bool {
	return u.Status == UserStatusJoined && !u.IsDeleted
}
