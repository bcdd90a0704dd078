package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Announcement struct {
	ID          string     `gorm:"column:id;primaryKey;type:uuid"`
	ChapterID   string     `gorm:"column:chapter_id;type:uuid;index"`
	AuthorID    string     `gorm:"column:author_id;type:uuid"`
	Title       string     `gorm:"column:title"`
	Content     string     `gorm:"column:content"`
	SendEmail   bool       `gorm:"column:send_email"`
	SendSMS     bool       `gorm:"column:send_sms"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at"`
	SentAt      *time.Time `gorm:"column:sent_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Announcement) TableName() string {
	return "announcements"
}

func (a *Announcement) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type AnnouncementRecipient struct {
	ID             string     `gorm:"column:id;primaryKey;type:uuid"`
	AnnouncementID string     `gorm:"column:announcement_id;type:uuid;uniqueIndex:idx_announcement_recipient"`
	UserID         string     `gorm:"column:user_id;type:uuid;uniqueIndex:idx_announcement_recipient"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (AnnouncementRecipient) TableName() string {
	return "announcement_recipients"
}

func (r *AnnouncementRecipient) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
