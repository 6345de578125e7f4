package models

import "time"

// Area is a named physical location under a project. The owner id is
// denormalized from the parent project and never reassigned.
type Area struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64   `gorm:"not null;index"`        // Owning user ID.
	ProjectID uint64   `gorm:"not null;index"`        // Parent project ID.
	Project   *Project `gorm:"foreignKey:ProjectID"`  // Parent project.

	Name string `gorm:"type:text;not null"` // Area name.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
