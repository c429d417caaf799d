package knowledge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tableName = "faq_entries"

// FaqRecord is the database row of a FAQ entry
type FaqRecord struct {
	ID        string    `gorm:"primaryKey;size:48"`
	Position  int       `gorm:"not null;default:0"`
	Question  string    `gorm:"not null"`
	Answer    string    `gorm:"type:text;not null"`
	Keywords  []string  `gorm:"serializer:json"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of gorm naming strategy
func (FaqRecord) TableName() string {
	return tableName
}

// Repository persists FAQ entries
type Repository interface {
	ListEntries(ctx context.Context) ([]Entry, error)
	SaveEntries(ctx context.Context, entries []Entry) error
	Count(ctx context.Context) (int64, error)
}

// gormRepository implements Repository using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-backed FAQ repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

// ListEntries returns all entries in their stored order
func (r *gormRepository) ListEntries(ctx context.Context) ([]Entry, error) {
	var records []FaqRecord
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list faq entries: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, Entry{
			ID:       EntryID(record.ID),
			Question: record.Question,
			Answer:   record.Answer,
			Keywords: record.Keywords,
		})
	}

	r.logger.Debug("Loaded FAQ entries from database", zap.Int("count", len(entries)))
	return entries, nil
}

// SaveEntries upserts entries, keeping their slice order as position
func (r *gormRepository) SaveEntries(ctx context.Context, entries []Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, entry := range entries {
			record := FaqRecord{
				ID:       entry.ID.String(),
				Position: i,
				Question: entry.Question,
				Answer:   entry.Answer,
				Keywords: entry.Keywords,
			}
			if err := tx.Save(&record).Error; err != nil {
				return fmt.Errorf("save faq entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored entries
func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FaqRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count faq entries: %w", err)
	}
	return count, nil
}
