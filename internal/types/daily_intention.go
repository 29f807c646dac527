package types

import (
	"time"
	"github.com/google/uuid"
)

type IntentionStatus string

const (
	IntentionPending    IntentionStatus = "pending"
	IntentionInProgress IntentionStatus = "in_progress"
	IntentionCompleted  IntentionStatus = "completed"
	IntentionFailed     IntentionStatus = "failed"
)

// Terminal reports whether no further status transitions are allowed.
func (s IntentionStatus) Terminal() bool {
	return s == IntentionCompleted || s == IntentionFailed
}

// DayKey renders a moment as its UTC calendar day, the partition key for the
// one-intention-per-day rule.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyIntention is the one commitment a user makes per UTC day. The unique
// index over (user_id, created_day) enforces the one-per-day rule at the
// storage layer, so racing submissions cannot both insert.
type DailyIntention struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uq_daily_intention_user_day,priority:1" json:"user_id"`
	User              *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CreatedDay        string          `gorm:"column:created_day;not null;uniqueIndex:uq_daily_intention_user_day,priority:2" json:"-"`
	IntentionText     string          `gorm:"column:intention_text;not null" json:"intention_text"`
	TargetQuantity    int             `gorm:"column:target_quantity;not null" json:"target_quantity"`
	CompletedQuantity int             `gorm:"column:completed_quantity;not null;default:0" json:"completed_quantity"`
	FocusBlockCount   int             `gorm:"column:focus_block_count;not null" json:"focus_block_count"`
	Status            IntentionStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	CoachFeedback     *string         `gorm:"column:coach_feedback" json:"coach_feedback,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`

	FocusBlocks []*FocusBlock `gorm:"foreignKey:DailyIntentionID;references:ID" json:"focus_blocks,omitempty"`
	DailyResult *DailyResult  `gorm:"foreignKey:DailyIntentionID;references:ID" json:"daily_result,omitempty"`
}

func (DailyIntention) TableName() string { return "daily_intention" }

// CompletionPercentage is derived, never stored. A zero target is 0%, not a
// division by zero.
func (di *DailyIntention) CompletionPercentage() float64 {
	if di.TargetQuantity <= 0 {
		return 0.0
	}
	return float64(di.CompletedQuantity) / float64(di.TargetQuantity) * 100.0
}
