package models

import "time"

// User represents an account reachable by a local username, a federated
// subject id, or both.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username  *string `gorm:"type:text;uniqueIndex"` // Unique login name; nil for federated-only accounts.
	Password  string  `gorm:"type:text"`             // Hashed password; empty for federated-only accounts.
	SubjectID *string `gorm:"type:text;uniqueIndex"` // Stable federated subject id; nil for local-only accounts.

	DisplayName string `gorm:"type:text"`             // Display name.
	Email       string `gorm:"type:text;index"`       // Email address.
	PhotoURL    string `gorm:"type:text"`             // Avatar URL from the identity provider.
	TOTPSecret  string `gorm:"type:text"`             // TOTP secret; empty when the second step is disabled.

	PlanID *uint64 `gorm:"index"`             // Active plan ID.
	Plan   *Plan   `gorm:"foreignKey:PlanID"` // Active plan.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
