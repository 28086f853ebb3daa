package infra

import (
	"fmt"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.Variant{},
		&model.VariantPricingConfig{},
		&model.PricingHistoryEntry{},
		&model.AlgorithmRunRecord{},
		&model.ProcessedEventRecord{},
		&model.DailyRevenue{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the run coordinator's "enabled variants" query.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'variant_pricing_configs')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pricing_configs_enabled') THEN
		    CREATE INDEX idx_pricing_configs_enabled
		        ON variant_pricing_configs (variant_id)
		        WHERE auto_pricing_enabled = true;
		  END IF;
		END $$`,
		// History lookups walk backwards for the latest increase entry.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'pricing_history_entries')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_history_variant_action_created') THEN
		    CREATE INDEX idx_history_variant_action_created
		        ON pricing_history_entries (variant_id, action, created_at DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
