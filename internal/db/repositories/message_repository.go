package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *gormModels.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*gormModels.Message, error) {
	var m gormModels.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	return &m, nil
}

// ListBetween returns the conversation between a and b, newest first
func (r *MessageRepository) ListBetween(ctx context.Context, a, b string, page Page) ([]gormModels.Message, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&gormModels.Message{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var msgs []gormModels.Message
	err := q.Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, total, nil
}

// MarkRead stamps read_at for the recipient. Already-read messages keep their timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Message{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read_at", gorm.Expr("COALESCE(read_at, ?)", at))
	if res.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&n).Error
	return n, err
}
