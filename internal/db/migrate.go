package db

import (
	"fmt"

	"github.com/paintsnap/server/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate runs schema migrations and seeds the plan table.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Plan{},
		&models.User{},
		&models.Project{},
		&models.Area{},
		&models.Photo{},
		&models.Tag{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureDefaultPlans inserts the built-in tiers when absent. Existing rows
// keep any operator-tuned quotas.
func ensureDefaultPlans(conn *gorm.DB) error {
	plans := []models.Plan{
		{
			Tier:             models.TierBasic,
			Name:             "Basic",
			Description:      "Free tier for trying PaintSnap out.",
			Features:         datatypes.JSON([]byte(`["3 areas","10 photos per area","15 tags per photo"]`)),
			MaxAreas:         3,
			MaxPhotosPerArea: 10,
			MaxTagsPerPhoto:  15,
			SortOrder:        0,
			IsEnabled:        true,
		},
		{
			Tier:             models.TierPremium,
			Name:             "Premium",
			MonthPrice:       4.99,
			Description:      "Unlimited areas, photos, and tags.",
			Features:         datatypes.JSON([]byte(`["Unlimited areas","Unlimited photos","Unlimited tags"]`)),
			MaxAreas:         models.UnlimitedQuota,
			MaxPhotosPerArea: models.UnlimitedQuota,
			MaxTagsPerPhoto:  models.UnlimitedQuota,
			SortOrder:        1,
			IsEnabled:        true,
		},
		{
			Tier:             models.TierPro,
			Name:             "Pro",
			MonthPrice:       9.99,
			Description:      "Everything in Premium, sized for professionals.",
			Features:         datatypes.JSON([]byte(`["Unlimited everything","Priority support"]`)),
			MaxAreas:         models.UnlimitedQuota,
			MaxPhotosPerArea: models.UnlimitedQuota,
			MaxTagsPerPhoto:  models.UnlimitedQuota,
			SortOrder:        2,
			IsEnabled:        true,
		},
	}

	for i := range plans {
		if errSeed := conn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier"}},
			DoNothing: true,
		}).Create(&plans[i]).Error; errSeed != nil {
			return fmt.Errorf("db: seed plan %s: %w", plans[i].Tier, errSeed)
		}
	}
	return nil
}
