package models

import "time"

// Photo is an uploaded image belonging to exactly one area. Image bytes
// live in the blob store under StorageKey; the row keeps metadata only.
type Photo struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	AreaID uint64 `gorm:"not null;index"`    // Parent area ID.
	Area   *Area  `gorm:"foreignKey:AreaID"` // Parent area.

	Name        string `gorm:"type:text;not null"` // Display name.
	Filename    string `gorm:"type:text"`          // Original upload filename.
	StorageKey  string `gorm:"type:text;not null"` // Blob store key for the image bytes.
	ContentType string `gorm:"type:text"`          // Image MIME type.
	Size        int64  `gorm:"not null;default:0"` // Image size in bytes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Upload timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last modified; touched when tags change.
}
