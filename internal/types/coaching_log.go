package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CoachingLog records every exchange with the coach, including fallback
// responses served when the provider was unavailable.
type CoachingLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Trigger   string         `gorm:"column:trigger;not null" json:"trigger"`
	UserText  string         `gorm:"column:user_text;not null" json:"user_text"`
	Feedback  string         `gorm:"column:feedback;not null" json:"feedback"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (CoachingLog) TableName() string { return "coaching_log" }
