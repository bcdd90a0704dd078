package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/constants"
)

type Recruit struct {
	ID             string                 `gorm:"column:id;primaryKey;type:uuid"`
	ChapterID      string                 `gorm:"column:chapter_id;type:uuid;index"`
	FullName       string                 `gorm:"column:full_name"`
	Email          *string                `gorm:"column:email"`
	Phone          *string                `gorm:"column:phone"`
	Instagram      *string                `gorm:"column:instagram"`
	Hometown       *string                `gorm:"column:hometown"`
	Major          *string                `gorm:"column:major"`
	GraduationYear *int                   `gorm:"column:graduation_year"`
	GPA            *float64               `gorm:"column:gpa"`
	Stage          constants.RecruitStage `gorm:"column:stage"`
	Notes          *string                `gorm:"column:notes"`
	ReferredBy     *string                `gorm:"column:referred_by"`
	AddedBy        string                 `gorm:"column:added_by;type:uuid"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Recruit) TableName() string {
	return "recruits"
}

func (r *Recruit) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
