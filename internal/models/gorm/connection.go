package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"greek-row/chapterhouse/internal/constants"
)

type Connection struct {
	ID          string                     `gorm:"column:id;primaryKey;type:uuid"`
	RequesterID string                     `gorm:"column:requester_id;type:uuid;index"`
	RecipientID string                     `gorm:"column:recipient_id;type:uuid;index"`
	Status      constants.ConnectionStatus `gorm:"column:status"`
	Message     *string                    `gorm:"column:message"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                  `gorm:"column:updated_at;autoUpdateTime"`

	Requester *Profile `gorm:"foreignKey:RequesterID"`
	Recipient *Profile `gorm:"foreignKey:RecipientID"`
}

func (Connection) TableName() string {
	return "connections"
}

func (c *Connection) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (c *Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// OtherParty returns the participant that is not userID.
func (c *Connection) OtherParty(userID string) *Profile {
	if c.RequesterID == userID {
		return c.Recipient
	}
	return c.Requester
}

type Message struct {
	ID          string     `gorm:"column:id;primaryKey;type:uuid"`
	SenderID    string     `gorm:"column:sender_id;type:uuid;index"`
	RecipientID string     `gorm:"column:recipient_id;type:uuid;index"`
	Content     string     `gorm:"column:content"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
