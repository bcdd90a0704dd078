package dtos

import "time"

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *ProfileView `json:"user"`
}

type ProfileView struct {
	ID             string                       `json:"id"`
	ChapterID      string                       `json:"chapter_id"`
	Email          string                       `json:"email"`
	FullName       string                       `json:"full_name"`
	Phone          *string                      `json:"phone,omitempty"`
	Role           string                       `json:"role"`
	ChapterRole    *string                      `json:"chapter_role,omitempty"`
	MemberStatus   string                       `json:"member_status"`
	Major          *string                      `json:"major,omitempty"`
	GraduationYear *int                         `json:"graduation_year,omitempty"`
	Bio            *string                      `json:"bio,omitempty"`
	AvatarURL      *string                      `json:"avatar_url,omitempty"`
	SMSConsent     bool                         `json:"sms_consent"`
	Alumni         *AlumniProfileView           `json:"alumni,omitempty"`
	Preferences    *NotificationPreferencesView `json:"notification_preferences,omitempty"`
	CreatedAt      time.Time                    `json:"created_at"`
}

type AlumniProfileView struct {
	Industry    *string `json:"industry,omitempty"`
	Company     *string `json:"company,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
	Location    *string `json:"location,omitempty"`
	LinkedInURL *string `json:"linkedin_url,omitempty"`
}

type NotificationPreferencesView struct {
	EmailEnabled              bool `json:"email_enabled"`
	AnnouncementNotifications bool `json:"announcement_notifications"`
	MessageNotifications      bool `json:"message_notifications"`
	ConnectionNotifications   bool `json:"connection_notifications"`
}

// MemberSummary is the directory card; no contact details beyond email
type MemberSummary struct {
	ID             string             `json:"id"`
	FullName       string             `json:"full_name"`
	Email          string             `json:"email"`
	Role           string             `json:"role"`
	ChapterRole    *string            `json:"chapter_role,omitempty"`
	Major          *string            `json:"major,omitempty"`
	GraduationYear *int               `json:"graduation_year,omitempty"`
	AvatarURL      *string            `json:"avatar_url,omitempty"`
	Alumni         *AlumniProfileView `json:"alumni,omitempty"`
}

type InvitationView struct {
	ID                   string     `json:"id"`
	ChapterID            string     `json:"chapter_id"`
	InvitationType       string     `json:"invitation_type"`
	ApprovalMode         string     `json:"approval_mode"`
	EmailDomainAllowlist []string   `json:"email_domain_allowlist"`
	SingleUse            bool       `json:"single_use"`
	MaxUses              *int       `json:"max_uses,omitempty"`
	UsageCount           int        `json:"usage_count"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	IsActive             bool       `json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
}

// CreatedInvitation is returned once; the raw token is not stored
type CreatedInvitation struct {
	InvitationView
	Token string `json:"token"`
	URL   string `json:"url"`
}

type InvitationValidation struct {
	Valid          bool   `json:"valid"`
	Reason         string `json:"reason,omitempty"`
	ChapterID      string `json:"chapter_id,omitempty"`
	ChapterName    string `json:"chapter_name,omitempty"`
	InvitationType string `json:"invitation_type,omitempty"`
}

type AcceptedInvitation struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ChapterID    string `json:"chapter_id"`
	MemberStatus string `json:"member_status"`
}

type AnnouncementView struct {
	ID          string     `json:"id"`
	ChapterID   string     `json:"chapter_id"`
	AuthorID    string     `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	SendSMS     bool       `json:"send_sms"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	IsRead      bool       `json:"is_read"`
}

type AnnouncementFeed struct {
	Paginated[AnnouncementView]
	Unread int64 `json:"unread"`
}

type ConnectionView struct {
	ID          string         `json:"id"`
	RequesterID string         `json:"requester_id"`
	RecipientID string         `json:"recipient_id"`
	Status      string         `json:"status"`
	Message     *string        `json:"message,omitempty"`
	Direction   string         `json:"direction"`
	OtherUser   *MemberSummary `json:"other_user,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type MessageView struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RecruitView struct {
	ID             string    `json:"id"`
	ChapterID      string    `json:"chapter_id"`
	FullName       string    `json:"full_name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Instagram      *string   `json:"instagram,omitempty"`
	Hometown       *string   `json:"hometown,omitempty"`
	Major          *string   `json:"major,omitempty"`
	GraduationYear *int      `json:"graduation_year,omitempty"`
	GPA            *float64  `json:"gpa,omitempty"`
	Stage          string    `json:"stage"`
	Notes          *string   `json:"notes,omitempty"`
	ReferredBy     *string   `json:"referred_by,omitempty"`
	AddedBy        string    `json:"added_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type RecruitList struct {
	Recruits []RecruitView    `json:"recruits"`
	Pipeline map[string]int64 `json:"pipeline"`
}

type ChapterView struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Organization string            `json:"organization"`
	School       string            `json:"school"`
	MemberCounts map[string]int64  `json:"member_counts"`
	Features     map[string]bool   `json:"features"`
	Branding     map[string]string `json:"branding"`
}

type HealthStatus struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Services map[string]string `json:"services"`
}
