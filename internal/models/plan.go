package models

import (
	"time"

	"gorm.io/datatypes"
)

// Plan tiers seeded at migration time.
const (
	TierBasic   = "basic"
	TierPremium = "premium"
	TierPro     = "pro"
)

// UnlimitedQuota is the effective ceiling for paid tiers.
const UnlimitedQuota = 1000000

// Plan represents an account tier and its creation quotas.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Tier        string         `gorm:"type:varchar(32);not null;uniqueIndex"` // Tier key (basic/premium/pro).
	Name        string         `gorm:"type:varchar(255);not null"`            // Display name.
	MonthPrice  float64        `gorm:"type:decimal(10,2);not null;default:0"` // Monthly price.
	Description string         `gorm:"type:text"`                             // Plan description.
	Features    datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`      // Marketing feature list.

	MaxAreas         int `gorm:"not null;default:0"` // Max areas per user.
	MaxPhotosPerArea int `gorm:"not null;default:0"` // Max photos per area.
	MaxTagsPerPhoto  int `gorm:"not null;default:0"` // Max tags per photo.

	SortOrder int  `gorm:"not null;default:0"`    // Display ordering weight.
	IsEnabled bool `gorm:"not null;default:true"` // Whether the plan can be assigned.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
