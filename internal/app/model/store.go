package model

import (
	"time"

	"gorm.io/gorm"
)

type Store struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"not null" json:"name"`              // store name
	Email       string `gorm:"uniqueIndex;not null" json:"email"` // unique across all stores
	Address     string `gorm:"type:text" json:"address"`          // street address
	Category    string `gorm:"index" json:"category"`             // e.g. "Restaurant"
	Phone       string `gorm:"type:varchar(30)" json:"phone"`     // contact number
	Website     string `json:"website"`                           // optional site URL
	Description string `gorm:"type:text" json:"description"`      // store introduction
	ImageURL    string `gorm:"type:text" json:"image_url"`        // uploaded URL or inline fallback data

	OwnerID *uint `gorm:"index" json:"owner_id"` // nullable - unclaimed stores have no owner
	Owner   *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"owner,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}
