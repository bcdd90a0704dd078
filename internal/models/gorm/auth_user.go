package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthUser is the local identity store record. Profiles reference it by id.
type AuthUser struct {
	ID           string     `gorm:"column:id;primaryKey;type:uuid"`
	Email        string     `gorm:"column:email;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AuthUser) TableName() string {
	return "auth_users"
}

func (u *AuthUser) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ProvisioningRecord tracks an in-flight account creation so a failed
// compensation can be retried later.
type ProvisioningRecord struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	InvitationID string    `gorm:"column:invitation_id;type:uuid;index"`
	Email        string    `gorm:"column:email"`
	AuthUserID   *string   `gorm:"column:auth_user_id;type:uuid"`
	Status       string    `gorm:"column:status;index"`
	Attempts     int       `gorm:"column:attempts"`
	LastError    *string   `gorm:"column:last_error"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProvisioningRecord) TableName() string {
	return "provisioning_records"
}

func (p *ProvisioningRecord) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
