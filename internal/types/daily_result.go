package types

import (
	"time"
	"github.com/google/uuid"
)

type DailyResult struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DailyIntentionID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"daily_intention_id"`
	DailyIntention        *DailyIntention `gorm:"constraint:OnDelete:CASCADE;foreignKey:DailyIntentionID;references:ID" json:"daily_intention,omitempty"`
	Succeeded             bool            `gorm:"column:succeeded;not null" json:"succeeded"`
	CoachFeedback         string          `gorm:"column:coach_feedback" json:"coach_feedback"`
	XPAwarded             int             `gorm:"column:xp_awarded;not null;default:0" json:"xp_awarded"`
	DisciplineStatGain    int             `gorm:"column:discipline_stat_gain;not null;default:0" json:"discipline_stat_gain"`
	RecoveryQuest         *string         `gorm:"column:recovery_quest" json:"recovery_quest,omitempty"`
	RecoveryQuestResponse *string         `gorm:"column:recovery_quest_response" json:"recovery_quest_response,omitempty"`
	CreatedAt             time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"not null" json:"updated_at"`
}

func (DailyResult) TableName() string { return "daily_result" }
