package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// CreateWithRecipients inserts the announcement and one recipient row per
// user in a single transaction
func (r *AnnouncementRepository) CreateWithRecipients(ctx context.Context, a *gormModels.Announcement, userIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("failed to create announcement: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}
		recipients := make([]gormModels.AnnouncementRecipient, 0, len(userIDs))
		for _, id := range userIDs {
			recipients = append(recipients, gormModels.AnnouncementRecipient{
				AnnouncementID: a.ID,
				UserID:         id,
			})
		}
		if err := tx.CreateInBatches(recipients, 200).Error; err != nil {
			return fmt.Errorf("failed to create announcement recipients: %w", err)
		}
		return nil
	})
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*gormModels.Announcement, error) {
	var a gormModels.Announcement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch announcement: %w", err)
	}
	return &a, nil
}

// ClaimSend sets sent_at once. False means another caller already sent it.
func (r *AnnouncementRepository) ClaimSend(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Announcement{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark announcement sent: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListDue returns unsent announcements scheduled at or before now
func (r *AnnouncementRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]gormModels.Announcement, error) {
	var due []gormModels.Announcement
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL AND scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due announcements: %w", err)
	}
	return due, nil
}

// MarkRead stamps the caller's recipient row. No row means the announcement
// was not addressed to the user.
func (r *AnnouncementRepository) MarkRead(ctx context.Context, announcementID, userID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.AnnouncementRecipient{}).
		Where("announcement_id = ? AND user_id = ?", announcementID, userID).
		Update("read_at", gorm.Expr("COALESCE(read_at, ?)", at))
	if res.Error != nil {
		return fmt.Errorf("failed to mark announcement read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an announcement of chapterID together with its recipient rows
func (r *AnnouncementRepository) Delete(ctx context.Context, chapterID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND chapter_id = ?", id, chapterID).Delete(&gormModels.Announcement{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete announcement: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("announcement_id = ?", id).Delete(&gormModels.AnnouncementRecipient{}).Error; err != nil {
			return fmt.Errorf("failed to delete announcement recipients: %w", err)
		}
		return nil
	})
}
