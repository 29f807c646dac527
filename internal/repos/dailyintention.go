package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type DailyIntentionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, intention *types.DailyIntention) (*types.DailyIntention, error)
  GetByIDForUser(ctx context.Context, tx *gorm.DB, intentionID, userID uuid.UUID) (*types.DailyIntention, error)
  GetForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyIntention, error)
  GetUnresolvedForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyIntention, error)
  Save(ctx context.Context, tx *gorm.DB, intention *types.DailyIntention) error
}

type dailyIntentionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDailyIntentionRepo(db *gorm.DB, baseLog *logger.Logger) DailyIntentionRepo {
  repoLog := baseLog.With("repo", "DailyIntentionRepo")
  return &dailyIntentionRepo{db: db, log: repoLog}
}

func (r *dailyIntentionRepo) Create(ctx context.Context, tx *gorm.DB, intention *types.DailyIntention) (*types.DailyIntention, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(intention).Error; err != nil {
    return nil, err
  }
  return intention, nil
}

func (r *dailyIntentionRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, intentionID, userID uuid.UUID) (*types.DailyIntention, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.DailyIntention
  if err := transaction.WithContext(ctx).
    Preload("FocusBlocks").
    Preload("DailyResult").
    Where("id = ? AND user_id = ?", intentionID, userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

// GetForDay returns the user's intention committed on the given UTC calendar
// day, with focus blocks and any result eagerly loaded. The lookup uses the
// same created_day column the uniqueness constraint is built on.
func (r *dailyIntentionRepo) GetForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyIntention, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.DailyIntention
  if err := transaction.WithContext(ctx).
    Preload("FocusBlocks").
    Preload("DailyResult").
    Where("user_id = ? AND created_day = ?", userID, types.DayKey(day)).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

// GetUnresolvedForDay finds a pending or in-progress intention committed on
// the given UTC calendar day. Used against yesterday for the morning-after
// prompt.
func (r *dailyIntentionRepo) GetUnresolvedForDay(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.DailyIntention, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.DailyIntention
  if err := transaction.WithContext(ctx).
    Preload("FocusBlocks").
    Preload("DailyResult").
    Where("user_id = ? AND created_day = ? AND status IN ?",
      userID, types.DayKey(day), []types.IntentionStatus{types.IntentionPending, types.IntentionInProgress}).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *dailyIntentionRepo) Save(ctx context.Context, tx *gorm.DB, intention *types.DailyIntention) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.DailyIntention{}).
    Where("id = ?", intention.ID).
    Updates(map[string]any{
      "completed_quantity": intention.CompletedQuantity,
      "status":             intention.Status,
      "coach_feedback":     intention.CoachFeedback,
    }).Error
}
