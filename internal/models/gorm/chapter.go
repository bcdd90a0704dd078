package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	Name         string    `gorm:"column:name"`
	Slug         string    `gorm:"column:slug;uniqueIndex"`
	Organization string    `gorm:"column:organization"`
	School       string    `gorm:"column:school"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Chapter) TableName() string {
	return "chapters"
}

func (c *Chapter) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ChapterBranding is merged key by key on update, never replaced wholesale.
type ChapterBranding struct {
	ChapterID string    `gorm:"column:chapter_id;primaryKey;type:uuid"`
	Settings  StringMap `gorm:"column:settings"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ChapterBranding) TableName() string {
	return "chapter_branding"
}

type ChapterFeatureFlags struct {
	ChapterID string    `gorm:"column:chapter_id;primaryKey;type:uuid"`
	Flags     BoolMap   `gorm:"column:flags"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ChapterFeatureFlags) TableName() string {
	return "chapter_feature_flags"
}
