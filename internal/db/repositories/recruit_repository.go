package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// RecruitRepository only hands out chapter-scoped views; there is no
// unscoped query on recruits.
type RecruitRepository struct {
	db *gorm.DB
}

func NewRecruitRepository(db *gorm.DB) *RecruitRepository {
	return &RecruitRepository{db: db}
}

// ForChapter returns a view whose every query is filtered by chapterID
func (r *RecruitRepository) ForChapter(chapterID string) *ChapterRecruits {
	return &ChapterRecruits{db: r.db, chapterID: chapterID}
}

type ChapterRecruits struct {
	db        *gorm.DB
	chapterID string
}

func (c *ChapterRecruits) ChapterID() string { return c.chapterID }

func (c *ChapterRecruits) scoped(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).
		Model(&gormModels.Recruit{}).
		Where("chapter_id = ?", c.chapterID)
}

type RecruitFilter struct {
	Stage constants.RecruitStage
	Query string
}

func (c *ChapterRecruits) List(ctx context.Context, f RecruitFilter) ([]gormModels.Recruit, error) {
	q := c.scoped(ctx)
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(full_name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR LOWER(COALESCE(hometown, '')) LIKE ?)", like, like, like)
	}

	var recruits []gormModels.Recruit
	if err := q.Order("created_at DESC").Find(&recruits).Error; err != nil {
		return nil, fmt.Errorf("failed to list recruits: %w", err)
	}
	return recruits, nil
}

// Get returns nil when the recruit does not exist in this chapter
func (c *ChapterRecruits) Get(ctx context.Context, id string) (*gormModels.Recruit, error) {
	var rec gormModels.Recruit
	err := c.scoped(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch recruit: %w", err)
	}
	return &rec, nil
}

// Create always stamps the scoped chapter, whatever the caller set
func (c *ChapterRecruits) Create(ctx context.Context, rec *gormModels.Recruit) error {
	rec.ChapterID = c.chapterID
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create recruit: %w", err)
	}
	return nil
}

func (c *ChapterRecruits) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	delete(updates, "chapter_id")
	if len(updates) == 0 {
		return nil
	}
	res := c.scoped(ctx).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update recruit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *ChapterRecruits) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND chapter_id = ?", id, c.chapterID).
		Delete(&gormModels.Recruit{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recruit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStage returns the pipeline summary for the chapter
func (c *ChapterRecruits) CountByStage(ctx context.Context) (map[constants.RecruitStage]int64, error) {
	var rows []struct {
		Stage constants.RecruitStage
		Count int64
	}
	err := c.scoped(ctx).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recruits: %w", err)
	}
	out := make(map[constants.RecruitStage]int64, len(constants.RecruitStages))
	for _, st := range constants.RecruitStages {
		out[st] = 0
	}
	for _, row := range rows {
		out[row.Stage] = row.Count
	}
	return out, nil
}
