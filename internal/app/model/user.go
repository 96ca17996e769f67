package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // account role

const (
	RoleAdmin      UserRole = "admin"       // platform administrator
	RoleUser       UserRole = "user"        // regular rating user
	RoleStoreOwner UserRole = "store_owner" // store owner dashboard access
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch UserRole(s) {
	case RoleAdmin, RoleUser, RoleStoreOwner:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(60);not null" json:"name"`       // display name (3-60 chars)
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`           // lowercase-normalized
	PasswordHash string         `gorm:"not null" json:"-"`                           // bcrypt hash, never exposed
	Address      string         `gorm:"type:varchar(400)" json:"address"`            // optional free text
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"` // admin / user / store_owner
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Stores []Store `gorm:"foreignKey:OwnerID" json:"stores,omitempty"` // owned stores
}

func (User) TableName() string {
	return "users"
}
