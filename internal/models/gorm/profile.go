package gorm

import (
	"time"

	"greek-row/chapterhouse/internal/constants"
)

// Profile is one row per authenticated user. ID equals the auth user id.
type Profile struct {
	ID             string                 `gorm:"column:id;primaryKey;type:uuid"`
	ChapterID      string                 `gorm:"column:chapter_id;type:uuid;index"`
	Email          string                 `gorm:"column:email"`
	FullName       string                 `gorm:"column:full_name"`
	Phone          *string                `gorm:"column:phone"`
	Role           constants.MemberRole   `gorm:"column:role"`
	ChapterRole    *string                `gorm:"column:chapter_role"`
	MemberStatus   constants.MemberStatus `gorm:"column:member_status"`
	Major          *string                `gorm:"column:major"`
	GraduationYear *int                   `gorm:"column:graduation_year"`
	Bio            *string                `gorm:"column:bio"`
	AvatarURL      *string                `gorm:"column:avatar_url"`
	SMSConsent     bool                   `gorm:"column:sms_consent"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Chapter       *Chapter       `gorm:"foreignKey:ChapterID"`
	AlumniProfile *AlumniProfile `gorm:"foreignKey:UserID;references:ID"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsExec reports whether the profile carries an executive chapter role.
func (p *Profile) IsExec() bool {
	return p.ChapterRole != nil && constants.IsExecChapterRole(*p.ChapterRole)
}

type AlumniProfile struct {
	UserID         string    `gorm:"column:user_id;primaryKey;type:uuid"`
	Industry       *string   `gorm:"column:industry"`
	Company        *string   `gorm:"column:company"`
	JobTitle       *string   `gorm:"column:job_title"`
	GraduationYear *int      `gorm:"column:graduation_year"`
	Location       *string   `gorm:"column:location"`
	LinkedInURL    *string   `gorm:"column:linkedin_url"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AlumniProfile) TableName() string {
	return "alumni_profiles"
}

// NotificationPreferences has no row for most users; a missing row means
// everything enabled.
type NotificationPreferences struct {
	UserID                    string    `gorm:"column:user_id;primaryKey;type:uuid"`
	EmailEnabled              bool      `gorm:"column:email_enabled"`
	AnnouncementNotifications bool      `gorm:"column:announcement_notifications"`
	MessageNotifications      bool      `gorm:"column:message_notifications"`
	ConnectionNotifications   bool      `gorm:"column:connection_notifications"`
	UpdatedAt                 time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

func DefaultNotificationPreferences(userID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:                    userID,
		EmailEnabled:              true,
		AnnouncementNotifications: true,
		MessageNotifications:      true,
		ConnectionNotifications:   true,
	}
}

// Allows reports whether an email of the given kind may go to this user.
func (p NotificationPreferences) Allows(kind constants.NotificationKind) bool {
	if kind == constants.NotifyWelcome {
		return true
	}
	if !p.EmailEnabled {
		return false
	}
	switch kind {
	case constants.NotifyAnnouncement:
		return p.AnnouncementNotifications
	case constants.NotifyMessage:
		return p.MessageNotifications
	case constants.NotifyConnectionRequest, constants.NotifyConnectionAccepted:
		return p.ConnectionNotifications
	}
	return false
}
