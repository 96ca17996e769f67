package model

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's rating of one store. The composite unique index on
// (user_id, store_id) is what actually enforces the one-rating-per-pair rule:
// the service layer's existence check is an optimization, the index is the
// guarantee under concurrent submission. Ratings are hard-deleted so a
// removed rating never blocks re-rating through the unique index.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"store_id"`
	Store     Store     `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"store,omitempty"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment"`                                 // optional
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "ratings"
}
