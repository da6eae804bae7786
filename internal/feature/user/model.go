package user

import (
	"time"
)

// IdentityModel backs the auth table. Passwords are only ever stored hashed.
type IdentityModel struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Email            string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string `gorm:"size:100;not null"`
	FullName         string `gorm:"size:128"` // sign-up metadata
	EmailConfirmedAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (IdentityModel) TableName() string { return "auth_users" }

type ProfileModel struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	FullName string `gorm:"size:128"`
	RoleID   string `gorm:"column:role_id;size:16;not null;default:client;index"`
	Plan     string `gorm:"size:16;not null;default:free;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProfileModel) TableName() string { return "profile" }
