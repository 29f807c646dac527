package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type CoachingLogRepo interface {
  Create(ctx context.Context, tx *gorm.DB, row *types.CoachingLog) (*types.CoachingLog, error)
}

type coachingLogRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCoachingLogRepo(db *gorm.DB, baseLog *logger.Logger) CoachingLogRepo {
  repoLog := baseLog.With("repo", "CoachingLogRepo")
  return &coachingLogRepo{db: db, log: repoLog}
}

func (r *coachingLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CoachingLog) (*types.CoachingLog, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
    return nil, err
  }
  return row, nil
}
