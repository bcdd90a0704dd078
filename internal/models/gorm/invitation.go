package gorm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Invitation struct {
	ID                   string     `gorm:"column:id;primaryKey;type:uuid"`
	ChapterID            string     `gorm:"column:chapter_id;type:uuid;index"`
	TokenHash            string     `gorm:"column:token_hash;uniqueIndex"`
	InvitationType       string     `gorm:"column:invitation_type"`
	ApprovalMode         string     `gorm:"column:approval_mode"`
	EmailDomainAllowlist StringList `gorm:"column:email_domain_allowlist"`
	SingleUse            bool       `gorm:"column:single_use"`
	MaxUses              *int       `gorm:"column:max_uses"`
	UsageCount           int        `gorm:"column:usage_count"`
	ExpiresAt            *time.Time `gorm:"column:expires_at"`
	IsActive             bool       `gorm:"column:is_active"`
	CreatedBy            string     `gorm:"column:created_by;type:uuid"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Chapter *Chapter `gorm:"foreignKey:ChapterID"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// UsageCap is the effective redemption limit; 0 means unlimited.
// single_use caps at one regardless of max_uses.
func (i *Invitation) UsageCap() int {
	if i.SingleUse {
		return 1
	}
	if i.MaxUses != nil {
		return *i.MaxUses
	}
	return 0
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

func (i *Invitation) IsExhausted() bool {
	c := i.UsageCap()
	return c > 0 && i.UsageCount >= c
}

// AllowsEmail checks the domain allowlist. An empty list allows any domain.
func (i *Invitation) AllowsEmail(email string) bool {
	if len(i.EmailDomainAllowlist) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range i.EmailDomainAllowlist {
		allowed = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(allowed), "@"))
		if domain == allowed {
			return true
		}
	}
	return false
}

// InvitationUsage is append-only.
type InvitationUsage struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	InvitationID string    `gorm:"column:invitation_id;type:uuid;uniqueIndex:idx_invitation_usage_email"`
	Email        string    `gorm:"column:email;uniqueIndex:idx_invitation_usage_email"`
	UserID       string    `gorm:"column:user_id;type:uuid"`
	UsedAt       time.Time `gorm:"column:used_at"`
}

func (InvitationUsage) TableName() string {
	return "invitation_usages"
}

func (u *InvitationUsage) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
