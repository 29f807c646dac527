package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type DailyResultRepo interface {
  Create(ctx context.Context, tx *gorm.DB, result *types.DailyResult) (*types.DailyResult, error)
  GetByIDForUser(ctx context.Context, tx *gorm.DB, resultID, userID uuid.UUID) (*types.DailyResult, error)
  GetByIntentionIDForUser(ctx context.Context, tx *gorm.DB, intentionID, userID uuid.UUID) (*types.DailyResult, error)
  ExistsForIntention(ctx context.Context, tx *gorm.DB, intentionID uuid.UUID) (bool, error)
  SaveRecoveryResponse(ctx context.Context, tx *gorm.DB, result *types.DailyResult) error
}

type dailyResultRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDailyResultRepo(db *gorm.DB, baseLog *logger.Logger) DailyResultRepo {
  repoLog := baseLog.With("repo", "DailyResultRepo")
  return &dailyResultRepo{db: db, log: repoLog}
}

func (r *dailyResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.DailyResult) (*types.DailyResult, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(result).Error; err != nil {
    return nil, err
  }
  return result, nil
}

func (r *dailyResultRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, resultID, userID uuid.UUID) (*types.DailyResult, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.DailyResult
  if err := transaction.WithContext(ctx).
    Preload("DailyIntention").
    Joins("JOIN daily_intention ON daily_intention.id = daily_result.daily_intention_id").
    Where("daily_result.id = ? AND daily_intention.user_id = ?", resultID, userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *dailyResultRepo) GetByIntentionIDForUser(ctx context.Context, tx *gorm.DB, intentionID, userID uuid.UUID) (*types.DailyResult, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.DailyResult
  if err := transaction.WithContext(ctx).
    Preload("DailyIntention").
    Joins("JOIN daily_intention ON daily_intention.id = daily_result.daily_intention_id").
    Where("daily_result.daily_intention_id = ? AND daily_intention.user_id = ?", intentionID, userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *dailyResultRepo) ExistsForIntention(ctx context.Context, tx *gorm.DB, intentionID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.DailyResult{}).
    Where("daily_intention_id = ?", intentionID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *dailyResultRepo) SaveRecoveryResponse(ctx context.Context, tx *gorm.DB, result *types.DailyResult) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.DailyResult{}).
    Where("id = ?", result.ID).
    Updates(map[string]any{
      "recovery_quest_response": result.RecoveryQuestResponse,
      "xp_awarded":              result.XPAwarded,
    }).Error
}
