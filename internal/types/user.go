package types

import (
	"time"
	"github.com/google/uuid"
)

type User struct {
	ID                        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email                     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password                  string     `gorm:"not null;column:password" json:"-"`
	Name                      string     `gorm:"not null;column:name" json:"name"`
	HighestLeverageActivity   *string    `gorm:"column:highest_leverage_activity" json:"highest_leverage_activity,omitempty"`
	DefaultFocusBlockDuration int        `gorm:"column:default_focus_block_duration;not null;default:50" json:"default_focus_block_duration"`
	CurrentStreak             int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak             int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	LastStreakUpdate          *time.Time `gorm:"column:last_streak_update" json:"last_streak_update,omitempty"`
	CreatedAt                 time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt                 time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
