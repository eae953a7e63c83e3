package repositories

import (
	"context"

	"gorm.io/gorm"

	"recruitsync_backend/internal/models"
)

// SyncLogRepository is append-only.
type SyncLogRepository interface {
	Create(ctx context.Context, log *models.SyncLog) error
	ListByPlatform(ctx context.Context, platformID string, limit int) ([]models.SyncLog, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Create(ctx context.Context, log *models.SyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *syncLogRepository) ListByPlatform(ctx context.Context, platformID string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []models.SyncLog
	err := r.db.WithContext(ctx).
		Where("platform_id = ?", platformID).
		Order("synced_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
