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

type AuthUserRepository struct {
	db *gorm.DB
}

func NewAuthUserRepository(db *gorm.DB) *AuthUserRepository {
	return &AuthUserRepository{db: db}
}

func (r *AuthUserRepository) Create(ctx context.Context, u *gormModels.AuthUser) error {
	u.Email = strings.ToLower(u.Email)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create auth user: %w", err)
	}
	return nil
}

func (r *AuthUserRepository) GetByEmail(ctx context.Context, email string) (*gormModels.AuthUser, error) {
	var u gormModels.AuthUser
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch auth user: %w", err)
	}
	return &u, nil
}

func (r *AuthUserRepository) GetByID(ctx context.Context, id string) (*gormModels.AuthUser, error) {
	var u gormModels.AuthUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch auth user: %w", err)
	}
	return &u, nil
}

// Delete removes the user. Deleting a missing user is not an error.
func (r *AuthUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&gormModels.AuthUser{}).Error; err != nil {
		return fmt.Errorf("failed to delete auth user: %w", err)
	}
	return nil
}

func (r *AuthUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&gormModels.AuthUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
