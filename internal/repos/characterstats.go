package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type CharacterStatsRepo interface {
  Create(ctx context.Context, tx *gorm.DB, stats *types.CharacterStats) (*types.CharacterStats, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterStats, error)
  GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterStats, error)
  Save(ctx context.Context, tx *gorm.DB, stats *types.CharacterStats) error
}

type characterStatsRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCharacterStatsRepo(db *gorm.DB, baseLog *logger.Logger) CharacterStatsRepo {
  repoLog := baseLog.With("repo", "CharacterStatsRepo")
  return &characterStatsRepo{db: db, log: repoLog}
}

func (r *characterStatsRepo) Create(ctx context.Context, tx *gorm.DB, stats *types.CharacterStats) (*types.CharacterStats, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(stats).Error; err != nil {
    return nil, err
  }
  return stats, nil
}

func (r *characterStatsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterStats, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.CharacterStats
  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

// GetOrCreateByUserID guarantees a stats row so reward-granting transitions
// can always apply gains.
func (r *characterStatsRepo) GetOrCreateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.CharacterStats, error) {
  found, err := r.GetByUserID(ctx, tx, userID)
  if err != nil {
    return nil, err
  }
  if found != nil {
    return found, nil
  }
  stats := &types.CharacterStats{ID: uuid.New(), UserID: userID}
  return r.Create(ctx, tx, stats)
}

func (r *characterStatsRepo) Save(ctx context.Context, tx *gorm.DB, stats *types.CharacterStats) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.CharacterStats{}).
    Where("id = ?", stats.ID).
    Updates(map[string]any{
      "xp":         stats.XP,
      "clarity":    stats.Clarity,
      "discipline": stats.Discipline,
      "resilience": stats.Resilience,
      "commitment": stats.Commitment,
    }).Error
}
