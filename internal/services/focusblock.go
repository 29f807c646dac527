package services

import (
  "context"
  "errors"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/game"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/repos"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type CreateFocusBlockInput struct {
  Intention       string
  DurationMinutes int
}

type UpdateFocusBlockInput struct {
  Status            *types.FocusBlockStatus
  PreBlockVideoURL  *string
  PostBlockVideoURL *string
}

// FocusBlockCompletion is the updated block plus the XP the update earned,
// which is nonzero only on the first transition into completed.
type FocusBlockCompletion struct {
  Block     *types.FocusBlock `json:"focus_block"`
  XPAwarded int               `json:"xp_awarded"`
}

type FocusBlockService interface {
  Create(ctx context.Context, userID uuid.UUID, in CreateFocusBlockInput) (*types.FocusBlock, error)
  Update(ctx context.Context, userID, blockID uuid.UUID, in UpdateFocusBlockInput) (*FocusBlockCompletion, error)
}

type focusBlockService struct {
  db                 *gorm.DB
  log                *logger.Logger
  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  dailyIntentionRepo repos.DailyIntentionRepo
  focusBlockRepo     repos.FocusBlockRepo

  now func() time.Time
}

func NewFocusBlockService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  characterStatsRepo repos.CharacterStatsRepo,
  dailyIntentionRepo repos.DailyIntentionRepo,
  focusBlockRepo repos.FocusBlockRepo,
) FocusBlockService {
  return &focusBlockService{
    db:                 db,
    log:                log.With("service", "FocusBlockService"),
    userRepo:           userRepo,
    characterStatsRepo: characterStatsRepo,
    dailyIntentionRepo: dailyIntentionRepo,
    focusBlockRepo:     focusBlockRepo,
    now:                time.Now,
  }
}

// Create starts a timed execution sprint under today's intention. Only one
// block may be active at a time.
func (fs *focusBlockService) Create(ctx context.Context, userID uuid.UUID, in CreateFocusBlockInput) (*types.FocusBlock, error) {
  in.Intention = strings.TrimSpace(in.Intention)
  if in.Intention == "" {
    return nil, apierr.InvalidArgument("focus block intention must not be empty")
  }
  if in.DurationMinutes == 0 {
    in.DurationMinutes = 50
  }
  if in.DurationMinutes < 1 || in.DurationMinutes > 120 {
    return nil, apierr.InvalidArgument("duration_minutes must be between 1 and 120")
  }

  var block *types.FocusBlock
  err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    intention, iErr := fs.dailyIntentionRepo.GetForDay(ctx, tx, userID, fs.now().UTC())
    if iErr != nil {
      return fmt.Errorf("failed to load today's intention: %w", iErr)
    }
    if intention == nil {
      return apierr.NotFound("no daily intention found for today")
    }
    active, aErr := fs.focusBlockRepo.ActiveExists(ctx, tx, intention.ID)
    if aErr != nil {
      return fmt.Errorf("failed to check active focus blocks: %w", aErr)
    }
    if active {
      return apierr.Conflict("you already have an active focus block; complete it before starting a new one")
    }
    block = &types.FocusBlock{
      ID:               uuid.New(),
      DailyIntentionID: intention.ID,
      Intention:        in.Intention,
      DurationMinutes:  in.DurationMinutes,
      Status:           types.FocusBlockPending,
    }
    if _, cErr := fs.focusBlockRepo.Create(ctx, tx, block); cErr != nil {
      // The partial unique index on active blocks catches a racing create
      // that slipped past the ActiveExists check.
      if errors.Is(cErr, gorm.ErrDuplicatedKey) {
        return apierr.Conflict("you already have an active focus block; complete it before starting a new one")
      }
      return fmt.Errorf("failed to create focus block: %w", cErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return block, nil
}

// Update patches status or video URLs. Blocks freeze at the end of their
// creation day, and the completion XP fires exactly once. Completing a block
// never advances the streak; only intention completion and recovery-quest
// responses do.
func (fs *focusBlockService) Update(ctx context.Context, userID, blockID uuid.UUID, in UpdateFocusBlockInput) (*FocusBlockCompletion, error) {
  if in.Status != nil && !in.Status.Valid() {
    return nil, apierr.InvalidArgument("invalid focus block status %q", string(*in.Status))
  }

  var out *FocusBlockCompletion
  err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    block, bErr := fs.focusBlockRepo.GetByIDForUser(ctx, tx, blockID, userID)
    if bErr != nil {
      return fmt.Errorf("failed to load focus block: %w", bErr)
    }
    if block == nil {
      return apierr.NotFound("focus block not found")
    }

    now := fs.now().UTC()
    created := block.CreatedAt.UTC()
    if created.Year() != now.Year() || created.YearDay() != now.YearDay() {
      return apierr.Forbidden("this focus block is from a previous day and can no longer be updated")
    }

    xpAwarded := 0
    if in.Status != nil {
      if block.Status == types.FocusBlockCompleted && *in.Status != types.FocusBlockCompleted {
        return apierr.Conflict("a completed focus block cannot be reopened")
      }
      if *in.Status == types.FocusBlockCompleted && block.Status != types.FocusBlockCompleted {
        user, uErr := fs.userRepo.GetByID(ctx, tx, userID)
        if uErr != nil {
          return fmt.Errorf("failed to load user: %w", uErr)
        }
        if user == nil {
          return apierr.NotFound("user not found")
        }
        xpAwarded = game.XPWithStreakBonus(game.BaseXPFocusBlockCompleted, user.CurrentStreak)
      }
      block.Status = *in.Status
    }
    if in.PreBlockVideoURL != nil {
      block.PreBlockVideoURL = in.PreBlockVideoURL
    }
    if in.PostBlockVideoURL != nil {
      block.PostBlockVideoURL = in.PostBlockVideoURL
    }

    if sErr := fs.focusBlockRepo.Save(ctx, tx, block); sErr != nil {
      return fmt.Errorf("failed to save focus block: %w", sErr)
    }
    if xpAwarded > 0 {
      stats, stErr := fs.characterStatsRepo.GetOrCreateByUserID(ctx, tx, userID)
      if stErr != nil {
        return fmt.Errorf("failed to load character stats: %w", stErr)
      }
      stats.XP += xpAwarded
      if svErr := fs.characterStatsRepo.Save(ctx, tx, stats); svErr != nil {
        return fmt.Errorf("failed to save character stats: %w", svErr)
      }
    }
    out = &FocusBlockCompletion{Block: block, XPAwarded: xpAwarded}
    return nil
  })
  if err != nil {
    return nil, err
  }
  return out, nil
}
