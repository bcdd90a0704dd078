package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// ProvisioningRepository persists account-creation saga state
type ProvisioningRepository struct {
	db *gorm.DB
}

func NewProvisioningRepository(db *gorm.DB) *ProvisioningRepository {
	return &ProvisioningRepository{db: db}
}

func (r *ProvisioningRepository) Create(ctx context.Context, rec *gormModels.ProvisioningRecord) error {
	if rec.Status == "" {
		rec.Status = constants.ProvisioningPending
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create provisioning record: %w", err)
	}
	return nil
}

func (r *ProvisioningRepository) SetAuthUser(ctx context.Context, id, authUserID string) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.ProvisioningRecord{}).
		Where("id = ?", id).
		Update("auth_user_id", authUserID).Error
}

// SetStatus moves the record and counts the attempt. lastErr may be empty.
func (r *ProvisioningRepository) SetStatus(ctx context.Context, id, status, lastErr string) error {
	updates := map[string]interface{}{
		"status":   status,
		"attempts": gorm.Expr("attempts + 1"),
	}
	if lastErr != "" {
		updates["last_error"] = lastErr
	}
	err := r.db.WithContext(ctx).
		Model(&gormModels.ProvisioningRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update provisioning record: %w", err)
	}
	return nil
}

// ListStale returns records in status last touched before cutoff
func (r *ProvisioningRepository) ListStale(ctx context.Context, status string, cutoff time.Time, limit int) ([]gormModels.ProvisioningRecord, error) {
	var recs []gormModels.ProvisioningRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list provisioning records: %w", err)
	}
	return recs, nil
}

func (r *ProvisioningRepository) GetByID(ctx context.Context, id string) (*gormModels.ProvisioningRecord, error) {
	var rec gormModels.ProvisioningRecord
	res := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rec)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch provisioning record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &rec, nil
}
