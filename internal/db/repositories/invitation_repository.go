package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) WithTx(tx *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: tx}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *gormModels.Invitation) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetByTokenHash looks an invitation up by the fingerprint of its token
func (r *InvitationRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*gormModels.Invitation, error) {
	var inv gormModels.Invitation
	err := r.db.WithContext(ctx).
		Preload("Chapter").
		Where("token_hash = ?", tokenHash).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch invitation: %w", err)
	}
	return &inv, nil
}

func (r *InvitationRepository) ListByChapter(ctx context.Context, chapterID string) ([]gormModels.Invitation, error) {
	var invs []gormModels.Invitation
	err := r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

// Deactivate turns an invitation off within its chapter
func (r *InvitationRepository) Deactivate(ctx context.Context, chapterID, id string) error {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Invitation{}).
		Where("id = ? AND chapter_id = ?", id, chapterID).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimUse increments usage_count only while the invitation is active,
// unexpired and under its cap. It reports whether a use was claimed.
func (r *InvitationRepository) ClaimUse(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gormModels.Invitation{}).
		Where("id = ? AND is_active = ?", id, true).
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		Where("usage_count < CASE WHEN single_use = ? THEN 1 WHEN max_uses IS NULL THEN usage_count + 1 ELSE max_uses END", true).
		UpdateColumns(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim invitation use: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *InvitationRepository) HasUsage(ctx context.Context, invitationID, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.InvitationUsage{}).
		Where("invitation_id = ? AND email = ?", invitationID, strings.ToLower(email)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check invitation usage: %w", err)
	}
	return n > 0, nil
}

func (r *InvitationRepository) RecordUsage(ctx context.Context, u *gormModels.InvitationUsage) error {
	u.Email = strings.ToLower(u.Email)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to record invitation usage: %w", err)
	}
	return nil
}
