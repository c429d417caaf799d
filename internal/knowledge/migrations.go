package knowledge

import (
	"context"
	"fmt"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates the FAQ table and its indexes
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&FaqRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s: %w", tableName, err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_faq_entries_position ON faq_entries(position)",
	}
	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create faq index: %w", err)
		}
	}

	return nil
}

// DropTables drops the FAQ table (for testing cleanup)
func DropTables(db *gorm.DB) error {
	if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", tableName)).Error; err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

// SeedIfEmpty copies the embedded FAQ document into an empty table and
// reports how many entries were written.
func SeedIfEmpty(ctx context.Context, repo Repository, logger *zap.Logger) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Debug("FAQ table already populated, skipping seed", zap.Int64("count", count))
		return 0, nil
	}

	entries, err := Decode(config.SourceEmbedded, embeddedFAQ)
	if err != nil {
		return 0, err
	}
	if err := repo.SaveEntries(ctx, entries); err != nil {
		return 0, err
	}

	logger.Info("Seeded FAQ table from embedded document", zap.Int("entries", len(entries)))
	return len(entries), nil
}
