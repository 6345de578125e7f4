package models

import "time"

// Tag is a positioned annotation on a photo. Positions are percentages
// in [0,100] relative to the photo dimensions.
type Tag struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID  uint64 `gorm:"not null;index"`     // Owning user ID.
	PhotoID uint64 `gorm:"not null;index"`     // Parent photo ID.
	Photo   *Photo `gorm:"foreignKey:PhotoID"` // Parent photo.

	Description     string  `gorm:"type:text;not null"` // Short description, e.g. a paint swatch name.
	Details         string  `gorm:"type:text"`          // Optional longer notes.
	ImageStorageKey string  `gorm:"type:text"`          // Optional blob store key for an attached image.
	PositionX       float64 `gorm:"not null"`           // Horizontal position percentage.
	PositionY       float64 `gorm:"not null"`           // Vertical position percentage.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
