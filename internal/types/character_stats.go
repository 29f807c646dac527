package types

import (
	"time"
	"github.com/google/uuid"
)

// CharacterStats stores totals only. Level and XP thresholds are derived,
// never persisted.
type CharacterStats struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	XP         int       `gorm:"column:xp;not null;default:0" json:"xp"`
	Clarity    int       `gorm:"column:clarity;not null;default:0" json:"clarity"`
	Discipline int       `gorm:"column:discipline;not null;default:0" json:"discipline"`
	Resilience int       `gorm:"column:resilience;not null;default:0" json:"resilience"`
	Commitment int       `gorm:"column:commitment;not null;default:0" json:"commitment"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (CharacterStats) TableName() string { return "character_stats" }
