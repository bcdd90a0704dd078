package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"greek-row/chapterhouse/internal/constants"

	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type ChapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

func (r *ChapterRepository) Create(ctx context.Context, c *gormModels.Chapter) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

func (r *ChapterRepository) GetByID(ctx context.Context, id string) (*gormModels.Chapter, error) {
	var c gormModels.Chapter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch chapter: %w", err)
	}
	return &c, nil
}

// GetFeatureFlags returns the stored flags; an empty map when none are saved
func (r *ChapterRepository) GetFeatureFlags(ctx context.Context, chapterID string) (map[string]bool, error) {
	var row gormModels.ChapterFeatureFlags
	res := r.db.WithContext(ctx).Where("chapter_id = ?", chapterID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch feature flags: %w", res.Error)
	}
	if res.RowsAffected == 0 || row.Flags == nil {
		return map[string]bool{}, nil
	}
	return row.Flags, nil
}

func (r *ChapterRepository) SaveFeatureFlags(ctx context.Context, chapterID string, flags map[string]bool) error {
	row := gormModels.ChapterFeatureFlags{ChapterID: chapterID, Flags: flags}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"flags", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save feature flags: %w", err)
	}
	return nil
}

func (r *ChapterRepository) GetBranding(ctx context.Context, chapterID string) (map[string]string, error) {
	var row gormModels.ChapterBranding
	res := r.db.WithContext(ctx).Where("chapter_id = ?", chapterID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch branding: %w", res.Error)
	}
	if res.RowsAffected == 0 || row.Settings == nil {
		return map[string]string{}, nil
	}
	return row.Settings, nil
}

func (r *ChapterRepository) SaveBranding(ctx context.Context, chapterID string, settings map[string]string) error {
	row := gormModels.ChapterBranding{ChapterID: chapterID, Settings: settings}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save branding: %w", err)
	}
	return nil
}

// CountMembers returns active members per role for the chapter overview
func (r *ChapterRepository) CountMembers(ctx context.Context, chapterID string) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&gormModels.Profile{}).
		Select("role, COUNT(*) AS count").
		Where("chapter_id = ? AND member_status = ?", chapterID, constants.MemberStatusActive).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
