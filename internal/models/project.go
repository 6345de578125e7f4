package models

import "time"

// Project is a named grouping of areas owned by a user. Each user keeps
// exactly one default project, enforced best-effort.
type Project struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`     // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`  // Owning user.

	Name        string `gorm:"type:text;not null"`     // Project name.
	Description string `gorm:"type:text"`              // Optional description.
	IsDefault   bool   `gorm:"not null;default:false"` // Default project flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
