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

type CreateIntentionInput struct {
  IntentionText   string
  TargetQuantity  int
  FocusBlockCount int
  // IsRefined marks an explicit re-submission after coach feedback. A refined
  // submission is always persisted, so the refinement gate can fire at most
  // once per intention.
  IsRefined bool
}

// RefinementFeedback is returned instead of a persisted intention when the
// coach judges the first submission too weak to commit to. Nothing is stored.
type RefinementFeedback struct {
  Feedback string `json:"coach_feedback"`
}

type IntentionService interface {
  Create(ctx context.Context, userID uuid.UUID, in CreateIntentionInput) (*types.DailyIntention, *RefinementFeedback, error)
  GetToday(ctx context.Context, userID uuid.UUID) (*types.DailyIntention, error)
  ReportProgress(ctx context.Context, userID uuid.UUID, completedQuantity int) (*types.DailyIntention, error)
  Complete(ctx context.Context, userID uuid.UUID) (*types.DailyResult, error)
  Fail(ctx context.Context, userID uuid.UUID) (*types.DailyResult, error)
}

type intentionService struct {
  db                 *gorm.DB
  log                *logger.Logger
  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  dailyIntentionRepo repos.DailyIntentionRepo
  dailyResultRepo    repos.DailyResultRepo
  coach              Coach

  now func() time.Time
}

func NewIntentionService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  characterStatsRepo repos.CharacterStatsRepo,
  dailyIntentionRepo repos.DailyIntentionRepo,
  dailyResultRepo repos.DailyResultRepo,
  coach Coach,
) IntentionService {
  return &intentionService{
    db:                 db,
    log:                log.With("service", "IntentionService"),
    userRepo:           userRepo,
    characterStatsRepo: characterStatsRepo,
    dailyIntentionRepo: dailyIntentionRepo,
    dailyResultRepo:    dailyResultRepo,
    coach:              coach,
    now:                time.Now,
  }
}

func validateCreateIntentionInput(in *CreateIntentionInput) error {
  in.IntentionText = strings.TrimSpace(in.IntentionText)
  if in.IntentionText == "" || len(in.IntentionText) > 2000 {
    return apierr.InvalidArgument("intention text must be 1-2000 characters")
  }
  if in.TargetQuantity < 1 || in.TargetQuantity > 100 {
    return apierr.InvalidArgument("target_quantity must be between 1 and 100")
  }
  if in.FocusBlockCount < 1 || in.FocusBlockCount > 30 {
    return apierr.InvalidArgument("focus_block_count must be between 1 and 30")
  }
  return nil
}

// Create runs the one-per-day check and the one-shot refinement gate. When the
// coach wants refinement on a first submission, nothing is persisted and the
// feedback is handed back to the caller instead.
func (is *intentionService) Create(ctx context.Context, userID uuid.UUID, in CreateIntentionInput) (*types.DailyIntention, *RefinementFeedback, error) {
  if vErr := validateCreateIntentionInput(&in); vErr != nil {
    return nil, nil, vErr
  }

  user, uErr := is.userRepo.GetByID(ctx, nil, userID)
  if uErr != nil {
    return nil, nil, fmt.Errorf("failed to load user: %w", uErr)
  }
  if user == nil {
    return nil, nil, apierr.NotFound("user not found")
  }

  existing, eErr := is.dailyIntentionRepo.GetForDay(ctx, nil, userID, is.now().UTC())
  if eErr != nil {
    return nil, nil, fmt.Errorf("failed to check today's intention: %w", eErr)
  }
  if existing != nil {
    return nil, nil, apierr.Conflict("daily intention already exists for today")
  }

  goal := ""
  if user.HighestLeverageActivity != nil {
    goal = *user.HighestLeverageActivity
  }
  analysis := is.coach.AnalyzeIntention(WithCoachUser(ctx, userID), IntentionAnalysisInput{
    UserName:         user.Name,
    LeverageActivity: goal,
    IntentionText:    in.IntentionText,
    TargetQuantity:   in.TargetQuantity,
    FocusBlockCount:  in.FocusBlockCount,
  })

  if !analysis.IsStrong && !in.IsRefined {
    return nil, &RefinementFeedback{Feedback: analysis.Feedback}, nil
  }

  intention := &types.DailyIntention{
    UserID:          userID,
    CreatedDay:      types.DayKey(is.now()),
    IntentionText:   in.IntentionText,
    TargetQuantity:  in.TargetQuantity,
    FocusBlockCount: in.FocusBlockCount,
    Status:          types.IntentionPending,
    CoachFeedback:   &analysis.Feedback,
  }
  err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    intention.ID = uuid.New()
    if _, cErr := is.dailyIntentionRepo.Create(ctx, tx, intention); cErr != nil {
      // The (user_id, created_day) unique index catches racing submissions
      // that slipped past the pre-check above.
      if errors.Is(cErr, gorm.ErrDuplicatedKey) {
        return apierr.Conflict("daily intention already exists for today")
      }
      return fmt.Errorf("failed to create intention: %w", cErr)
    }
    if analysis.ClarityGain > 0 {
      stats, sErr := is.characterStatsRepo.GetOrCreateByUserID(ctx, tx, userID)
      if sErr != nil {
        return fmt.Errorf("failed to load character stats: %w", sErr)
      }
      stats.Clarity += analysis.ClarityGain
      if svErr := is.characterStatsRepo.Save(ctx, tx, stats); svErr != nil {
        return fmt.Errorf("failed to save character stats: %w", svErr)
      }
    }
    return nil
  })
  if err != nil {
    return nil, nil, err
  }
  return intention, nil, nil
}

func (is *intentionService) GetToday(ctx context.Context, userID uuid.UUID) (*types.DailyIntention, error) {
  intention, err := is.dailyIntentionRepo.GetForDay(ctx, nil, userID, is.now().UTC())
  if err != nil {
    return nil, fmt.Errorf("failed to load today's intention: %w", err)
  }
  if intention == nil {
    return nil, apierr.NotFound("no daily intention found for today")
  }
  return intention, nil
}

// ReportProgress applies an absolute progress value: never less than what was
// already recorded, clamped to the target. Status follows progress until a
// terminal transition freezes it.
func (is *intentionService) ReportProgress(ctx context.Context, userID uuid.UUID, completedQuantity int) (*types.DailyIntention, error) {
  if completedQuantity < 0 {
    return nil, apierr.InvalidArgument("completed_quantity must not be negative")
  }

  var intention *types.DailyIntention
  err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var iErr error
    intention, iErr = is.dailyIntentionRepo.GetForDay(ctx, tx, userID, is.now().UTC())
    if iErr != nil {
      return fmt.Errorf("failed to load today's intention: %w", iErr)
    }
    if intention == nil {
      return apierr.NotFound("no daily intention found for today")
    }
    hasResult, hErr := is.dailyResultRepo.ExistsForIntention(ctx, tx, intention.ID)
    if hErr != nil {
      return fmt.Errorf("failed to check daily result: %w", hErr)
    }
    if hasResult {
      return apierr.Conflict("this intention already has a daily result and can no longer change")
    }
    if completedQuantity < intention.CompletedQuantity {
      return apierr.InvalidArgument("cannot report less progress than already recorded")
    }

    intention.CompletedQuantity = completedQuantity
    if intention.CompletedQuantity > intention.TargetQuantity {
      intention.CompletedQuantity = intention.TargetQuantity
    }
    switch {
    case intention.CompletedQuantity >= intention.TargetQuantity:
      intention.Status = types.IntentionCompleted
    case intention.CompletedQuantity > 0:
      intention.Status = types.IntentionInProgress
    default:
      intention.Status = types.IntentionPending
    }
    if sErr := is.dailyIntentionRepo.Save(ctx, tx, intention); sErr != nil {
      return fmt.Errorf("failed to save intention progress: %w", sErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return intention, nil
}

// Complete closes a finished day: reflection, discipline and streak-bonus'd
// XP, streak advance, and the DailyResult, all in one transaction. The XP
// bonus uses the streak as it stood before this completion advances it.
func (is *intentionService) Complete(ctx context.Context, userID uuid.UUID) (*types.DailyResult, error) {
  user, intention, err := is.loadForResolution(ctx, userID)
  if err != nil {
    return nil, err
  }
  if intention.CompletedQuantity < intention.TargetQuantity {
    return nil, apierr.PreconditionFailed("intention progress is not yet complete")
  }

  goal := ""
  if user.HighestLeverageActivity != nil {
    goal = *user.HighestLeverageActivity
  }
  reflection := is.coach.ReflectOnDay(WithCoachUser(ctx, userID), ReflectionInput{
    UserName:         user.Name,
    LeverageActivity: goal,
    IntentionText:    intention.IntentionText,
    TargetQuantity:   intention.TargetQuantity,
    AchievedQuantity: intention.CompletedQuantity,
    CompletionRate:   intention.CompletionPercentage(),
    Succeeded:        true,
  })

  xpGain := game.XPWithStreakBonus(game.BaseXPIntentionCompleted, user.CurrentStreak)
  result := &types.DailyResult{
    DailyIntentionID:   intention.ID,
    Succeeded:          true,
    CoachFeedback:      reflection.Feedback,
    XPAwarded:          xpGain,
    DisciplineStatGain: reflection.DisciplineGain,
  }

  err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if cErr := is.guardNoResult(ctx, tx, intention.ID, apierr.PreconditionFailed("a result for this intention already exists")); cErr != nil {
      return cErr
    }
    intention.Status = types.IntentionCompleted
    if sErr := is.dailyIntentionRepo.Save(ctx, tx, intention); sErr != nil {
      return fmt.Errorf("failed to save intention: %w", sErr)
    }
    result.ID = uuid.New()
    if _, rErr := is.dailyResultRepo.Create(ctx, tx, result); rErr != nil {
      return fmt.Errorf("failed to create daily result: %w", rErr)
    }
    stats, stErr := is.characterStatsRepo.GetOrCreateByUserID(ctx, tx, userID)
    if stErr != nil {
      return fmt.Errorf("failed to load character stats: %w", stErr)
    }
    stats.Discipline += reflection.DisciplineGain
    stats.XP += xpGain
    if svErr := is.characterStatsRepo.Save(ctx, tx, stats); svErr != nil {
      return fmt.Errorf("failed to save character stats: %w", svErr)
    }
    if game.UpdateStreak(user, is.now()) {
      if ssErr := is.userRepo.SaveStreak(ctx, tx, user); ssErr != nil {
        return fmt.Errorf("failed to save streak: %w", ssErr)
      }
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return result, nil
}

// Fail triggers the fail-forward path: the reflection carries a recovery
// quest, and nothing is granted until the player answers it.
func (is *intentionService) Fail(ctx context.Context, userID uuid.UUID) (*types.DailyResult, error) {
  user, intention, err := is.loadForResolution(ctx, userID)
  if err != nil {
    return nil, err
  }

  goal := ""
  if user.HighestLeverageActivity != nil {
    goal = *user.HighestLeverageActivity
  }
  reflection := is.coach.ReflectOnDay(WithCoachUser(ctx, userID), ReflectionInput{
    UserName:         user.Name,
    LeverageActivity: goal,
    IntentionText:    intention.IntentionText,
    TargetQuantity:   intention.TargetQuantity,
    AchievedQuantity: intention.CompletedQuantity,
    CompletionRate:   intention.CompletionPercentage(),
    Succeeded:        false,
  })
  if reflection.RecoveryQuest == nil || *reflection.RecoveryQuest == "" {
    quest := fallbackRecoveryQuest(intention.CompletionPercentage())
    reflection.RecoveryQuest = &quest
  }

  result := &types.DailyResult{
    DailyIntentionID: intention.ID,
    Succeeded:        false,
    CoachFeedback:    reflection.Feedback,
    RecoveryQuest:    reflection.RecoveryQuest,
  }

  err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if cErr := is.guardNoResult(ctx, tx, intention.ID, apierr.Conflict("a result for this intention already exists")); cErr != nil {
      return cErr
    }
    intention.Status = types.IntentionFailed
    if sErr := is.dailyIntentionRepo.Save(ctx, tx, intention); sErr != nil {
      return fmt.Errorf("failed to save intention: %w", sErr)
    }
    result.ID = uuid.New()
    if _, rErr := is.dailyResultRepo.Create(ctx, tx, result); rErr != nil {
      return fmt.Errorf("failed to create daily result: %w", rErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return result, nil
}

func (is *intentionService) loadForResolution(ctx context.Context, userID uuid.UUID) (*types.User, *types.DailyIntention, error) {
  user, uErr := is.userRepo.GetByID(ctx, nil, userID)
  if uErr != nil {
    return nil, nil, fmt.Errorf("failed to load user: %w", uErr)
  }
  if user == nil {
    return nil, nil, apierr.NotFound("user not found")
  }
  intention, iErr := is.dailyIntentionRepo.GetForDay(ctx, nil, userID, is.now().UTC())
  if iErr != nil {
    return nil, nil, fmt.Errorf("failed to load today's intention: %w", iErr)
  }
  if intention == nil {
    return nil, nil, apierr.NotFound("no daily intention found for today")
  }
  return user, intention, nil
}

func (is *intentionService) guardNoResult(ctx context.Context, tx *gorm.DB, intentionID uuid.UUID, conflictErr error) error {
  hasResult, hErr := is.dailyResultRepo.ExistsForIntention(ctx, tx, intentionID)
  if hErr != nil {
    return fmt.Errorf("failed to check daily result: %w", hErr)
  }
  if hasResult {
    return conflictErr
  }
  return nil
}
