package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type FocusBlockRepo interface {
  Create(ctx context.Context, tx *gorm.DB, block *types.FocusBlock) (*types.FocusBlock, error)
  GetByIDForUser(ctx context.Context, tx *gorm.DB, blockID, userID uuid.UUID) (*types.FocusBlock, error)
  ActiveExists(ctx context.Context, tx *gorm.DB, intentionID uuid.UUID) (bool, error)
  Save(ctx context.Context, tx *gorm.DB, block *types.FocusBlock) error
}

type focusBlockRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFocusBlockRepo(db *gorm.DB, baseLog *logger.Logger) FocusBlockRepo {
  repoLog := baseLog.With("repo", "FocusBlockRepo")
  return &focusBlockRepo{db: db, log: repoLog}
}

func (r *focusBlockRepo) Create(ctx context.Context, tx *gorm.DB, block *types.FocusBlock) (*types.FocusBlock, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(block).Error; err != nil {
    return nil, err
  }
  return block, nil
}

// GetByIDForUser joins through the parent intention so ownership is checked
// against the requesting user, never a bare foreign key.
func (r *focusBlockRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, blockID, userID uuid.UUID) (*types.FocusBlock, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var result types.FocusBlock
  if err := transaction.WithContext(ctx).
    Joins("JOIN daily_intention ON daily_intention.id = focus_block.daily_intention_id").
    Where("focus_block.id = ? AND daily_intention.user_id = ?", blockID, userID).
    First(&result).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &result, nil
}

func (r *focusBlockRepo) ActiveExists(ctx context.Context, tx *gorm.DB, intentionID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.FocusBlock{}).
    Where("daily_intention_id = ? AND status IN ?",
      intentionID, []types.FocusBlockStatus{types.FocusBlockPending, types.FocusBlockInProgress}).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *focusBlockRepo) Save(ctx context.Context, tx *gorm.DB, block *types.FocusBlock) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.FocusBlock{}).
    Where("id = ?", block.ID).
    Updates(map[string]any{
      "status":               block.Status,
      "pre_block_video_url":  block.PreBlockVideoURL,
      "post_block_video_url": block.PostBlockVideoURL,
    }).Error
}
