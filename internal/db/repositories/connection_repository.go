package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Create(ctx context.Context, c *gormModels.Connection) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// GetByID loads a connection with both participants
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*gormModels.Connection, error) {
	var c gormModels.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch connection: %w", err)
	}
	return &c, nil
}

// FindBetween returns the connection between a and b in either direction
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b string) (*gormModels.Connection, error) {
	var c gormModels.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)", a, b, b, a).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch connection: %w", err)
	}
	return &c, nil
}

// ListForUser returns every connection userID participates in, newest first
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID string, status constants.ConnectionStatus) ([]gormModels.Connection, error) {
	q := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Recipient").
		Where("(requester_id = ? OR recipient_id = ?)", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var conns []gormModels.Connection
	if err := q.Order("updated_at DESC").Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id string, status constants.ConnectionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Connection{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.Connection{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete connection: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AreConnected reports whether a and b share an accepted connection
func (r *ConnectionRepository) AreConnected(ctx context.Context, a, b string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Connection{}).
		Where("((requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?))", a, b, b, a).
		Where("status = ?", constants.ConnectionAccepted).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check connection: %w", err)
	}
	return n > 0, nil
}
