package dtos

import "time"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateInvitationRequest is validated in the service; field rules here are
// the shape checks only.
type CreateInvitationRequest struct {
	ChapterID            string     `json:"chapter_id" validate:"required"`
	EmailDomainAllowlist []string   `json:"email_domain_allowlist" validate:"omitempty,dive,required,max=253"`
	ApprovalMode         string     `json:"approval_mode" validate:"omitempty,oneof=auto manual"`
	SingleUse            bool       `json:"single_use"`
	ExpiresAt            *time.Time `json:"expires_at"`
	MaxUses              *int       `json:"max_uses" validate:"omitempty,min=1"`
	InvitationType       string     `json:"invitation_type" validate:"omitempty,oneof=active_member alumni"`
}

// AcceptInvitationRequest carries the signup form. Required-field checks
// happen in the service so they come back with the invitation error text.
type AcceptInvitationRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Major          string `json:"major"`
	GraduationYear *int   `json:"graduation_year"`
	SMSConsent     bool   `json:"sms_consent"`

	// Alumni only
	Industry    string `json:"industry"`
	Company     string `json:"company"`
	JobTitle    string `json:"job_title"`
	Location    string `json:"location"`
	LinkedInURL string `json:"linkedin_url"`
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Phone          *string `json:"phone" validate:"omitempty,us_phone"`
	Major          *string `json:"major" validate:"omitempty,max=200"`
	GraduationYear *int    `json:"graduation_year"`
	Bio            *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL      *string `json:"avatar_url" validate:"omitempty,url"`
	SMSConsent     *bool   `json:"sms_consent"`

	NotificationPreferences *NotificationPreferencesPatch `json:"notification_preferences"`
	Alumni                  *AlumniProfilePatch           `json:"alumni"`
}

type NotificationPreferencesPatch struct {
	EmailEnabled              *bool `json:"email_enabled"`
	AnnouncementNotifications *bool `json:"announcement_notifications"`
	MessageNotifications      *bool `json:"message_notifications"`
	ConnectionNotifications   *bool `json:"connection_notifications"`
}

type AlumniProfilePatch struct {
	Industry    *string `json:"industry" validate:"omitempty,max=200"`
	Company     *string `json:"company" validate:"omitempty,max=200"`
	JobTitle    *string `json:"job_title" validate:"omitempty,max=200"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	LinkedInURL *string `json:"linkedin_url" validate:"omitempty,linkedin_url"`
}

// UpdateMemberRequest is the admin-only member edit
type UpdateMemberRequest struct {
	Role         *string `json:"role" validate:"omitempty,oneof=admin active_member alumni"`
	ChapterRole  *string `json:"chapter_role" validate:"omitempty,max=100"`
	MemberStatus *string `json:"member_status" validate:"omitempty,oneof=active pending_approval inactive"`
}

type CreateAnnouncementRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Content     string     `json:"content" validate:"required,max=10000"`
	SendEmail   *bool      `json:"send_email"`
	SendSMS     bool       `json:"send_sms"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type CreateConnectionRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Message     string `json:"message" validate:"max=1000"`
}

// UpdateConnectionRequest is checked against the transition table in the service
type UpdateConnectionRequest struct {
	Status string `json:"status"`
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=5000"`
}

// RecruitRequest is shared by create and patch; nil means "not sent"
type RecruitRequest struct {
	FullName       *string  `json:"full_name" validate:"omitempty,min=1,max=200"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone" validate:"omitempty,max=30"`
	Instagram      *string  `json:"instagram" validate:"omitempty,max=100"`
	Hometown       *string  `json:"hometown" validate:"omitempty,max=200"`
	Major          *string  `json:"major" validate:"omitempty,max=200"`
	GraduationYear *int     `json:"graduation_year"`
	GPA            *float64 `json:"gpa" validate:"omitempty,gte=0,lte=5"`
	Stage          *string  `json:"stage"`
	Notes          *string  `json:"notes" validate:"omitempty,max=5000"`
	ReferredBy     *string  `json:"referred_by" validate:"omitempty,max=200"`
}
