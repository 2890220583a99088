package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sdbridge/internal/infrastructure/persistence/models"
)

// KVRepository is a small opaque key/value store for operational markers,
// such as the cleanup worker's last-run day.
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository creates a new KVRepository
func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Set stores a value under a key
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	model := &models.KVModel{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at"}),
	}).Create(model).Error
}

// Get returns the value for a key; ok is false when the key is absent.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var model models.KVModel
	if err := r.db.WithContext(ctx).Where("k = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// Delete removes a key
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("k = ?", key).Delete(&models.KVModel{}).Error
}
