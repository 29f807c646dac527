package types

import (
	"time"
	"github.com/google/uuid"
)

type FocusBlockStatus string

const (
	FocusBlockPending    FocusBlockStatus = "pending"
	FocusBlockInProgress FocusBlockStatus = "in_progress"
	FocusBlockCompleted  FocusBlockStatus = "completed"
)

// Active means the block still occupies the single active slot under its
// parent intention.
func (s FocusBlockStatus) Active() bool {
	return s == FocusBlockPending || s == FocusBlockInProgress
}

func (s FocusBlockStatus) Valid() bool {
	switch s {
	case FocusBlockPending, FocusBlockInProgress, FocusBlockCompleted:
		return true
	}
	return false
}

type FocusBlock struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// The partial unique index holds at most one non-completed block per
	// intention, backing the single-active-slot rule under concurrency.
	DailyIntentionID  uuid.UUID        `gorm:"type:uuid;not null;index;index:uq_focus_block_active,unique,where:status <> 'completed'" json:"daily_intention_id"`
	DailyIntention    *DailyIntention  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DailyIntentionID;references:ID" json:"daily_intention,omitempty"`
	Intention         string           `gorm:"column:intention;not null" json:"intention"`
	DurationMinutes   int              `gorm:"column:duration_minutes;not null;default:50" json:"duration_minutes"`
	Status            FocusBlockStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	PreBlockVideoURL  *string          `gorm:"column:pre_block_video_url" json:"pre_block_video_url,omitempty"`
	PostBlockVideoURL *string          `gorm:"column:post_block_video_url" json:"post_block_video_url,omitempty"`
	CreatedAt         time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null" json:"updated_at"`
}

func (FocusBlock) TableName() string { return "focus_block" }
