package model

import (
	"time"

	"github.com/google/uuid"
)

// PostModel mirrors the 'posts' table. Timestamps are set by the application;
// updated_at stays NULL until the first edit.
type PostModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title     string     `gorm:"type:text;not null"`
	Content   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName explicitly sets the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}
