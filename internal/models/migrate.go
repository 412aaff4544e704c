package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the schema. The one-default-address rule is a partial
// unique index, which gorm tags cannot express portably.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_one_default_address ON user_addresses (user_id) WHERE is_default",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
