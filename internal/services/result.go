package services

import (
  "context"
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

// RecoveryQuestOutcome is what the player receives for answering a recovery
// quest: coaching text plus the resilience and XP it earned.
type RecoveryQuestOutcome struct {
  RecoveryQuestResponse string `json:"recovery_quest_response"`
  CoachingFeedback      string `json:"coaching_feedback"`
  ResilienceStatGain    int    `json:"resilience_stat_gain"`
  XPAwarded             int    `json:"xp_awarded"`
}

type DailyResultService interface {
  GetByIntentionID(ctx context.Context, userID, intentionID uuid.UUID) (*types.DailyResult, error)
  RespondToRecoveryQuest(ctx context.Context, userID, resultID uuid.UUID, responseText string) (*RecoveryQuestOutcome, error)
}

type dailyResultService struct {
  db                 *gorm.DB
  log                *logger.Logger
  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  dailyResultRepo    repos.DailyResultRepo
  coach              Coach

  now func() time.Time
}

func NewDailyResultService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  characterStatsRepo repos.CharacterStatsRepo,
  dailyResultRepo repos.DailyResultRepo,
  coach Coach,
) DailyResultService {
  return &dailyResultService{
    db:                 db,
    log:                log.With("service", "DailyResultService"),
    userRepo:           userRepo,
    characterStatsRepo: characterStatsRepo,
    dailyResultRepo:    dailyResultRepo,
    coach:              coach,
    now:                time.Now,
  }
}

func (ds *dailyResultService) GetByIntentionID(ctx context.Context, userID, intentionID uuid.UUID) (*types.DailyResult, error) {
  result, err := ds.dailyResultRepo.GetByIntentionIDForUser(ctx, nil, intentionID, userID)
  if err != nil {
    return nil, fmt.Errorf("failed to load daily result: %w", err)
  }
  if result == nil {
    return nil, apierr.NotFound("no daily result found for this intention")
  }
  return result, nil
}

// RespondToRecoveryQuest is the fail-forward reward path: answering the quest
// once earns resilience, streak-bonus'd XP, and advances the streak even
// though the day itself was failed.
func (ds *dailyResultService) RespondToRecoveryQuest(ctx context.Context, userID, resultID uuid.UUID, responseText string) (*RecoveryQuestOutcome, error) {
  responseText = strings.TrimSpace(responseText)
  if responseText == "" {
    return nil, apierr.InvalidArgument("recovery quest response must not be empty")
  }

  user, uErr := ds.userRepo.GetByID(ctx, nil, userID)
  if uErr != nil {
    return nil, fmt.Errorf("failed to load user: %w", uErr)
  }
  if user == nil {
    return nil, apierr.NotFound("user not found")
  }
  result, rErr := ds.dailyResultRepo.GetByIDForUser(ctx, nil, resultID, userID)
  if rErr != nil {
    return nil, fmt.Errorf("failed to load daily result: %w", rErr)
  }
  if result == nil {
    return nil, apierr.NotFound("daily result not found")
  }
  if result.RecoveryQuest == nil || *result.RecoveryQuest == "" {
    return nil, apierr.InvalidArgument("no recovery quest available for this result")
  }
  if result.RecoveryQuestResponse != nil {
    return nil, apierr.Conflict("a response for this recovery quest has already been submitted")
  }

  intentionText := ""
  if result.DailyIntention != nil {
    intentionText = result.DailyIntention.IntentionText
  }
  coaching := ds.coach.CoachRecovery(WithCoachUser(ctx, userID), RecoveryCoachingInput{
    UserName:      user.Name,
    IntentionText: intentionText,
    RecoveryQuest: *result.RecoveryQuest,
    ResponseText:  responseText,
  })

  xpAwarded := game.XPWithStreakBonus(game.BaseXPRecoveryQuestCompleted, user.CurrentStreak)

  err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    // Re-read inside the transaction so two racing submissions cannot both
    // claim the reward.
    fresh, fErr := ds.dailyResultRepo.GetByIDForUser(ctx, tx, resultID, userID)
    if fErr != nil {
      return fmt.Errorf("failed to re-check daily result: %w", fErr)
    }
    if fresh == nil {
      return apierr.NotFound("daily result not found")
    }
    if fresh.RecoveryQuestResponse != nil {
      return apierr.Conflict("a response for this recovery quest has already been submitted")
    }

    result.RecoveryQuestResponse = &responseText
    result.XPAwarded = xpAwarded
    if sErr := ds.dailyResultRepo.SaveRecoveryResponse(ctx, tx, result); sErr != nil {
      return fmt.Errorf("failed to save recovery response: %w", sErr)
    }
    stats, stErr := ds.characterStatsRepo.GetOrCreateByUserID(ctx, tx, userID)
    if stErr != nil {
      return fmt.Errorf("failed to load character stats: %w", stErr)
    }
    stats.Resilience += coaching.ResilienceGain
    stats.XP += xpAwarded
    if svErr := ds.characterStatsRepo.Save(ctx, tx, stats); svErr != nil {
      return fmt.Errorf("failed to save character stats: %w", svErr)
    }
    if game.UpdateStreak(user, ds.now()) {
      if ssErr := ds.userRepo.SaveStreak(ctx, tx, user); ssErr != nil {
        return fmt.Errorf("failed to save streak: %w", ssErr)
      }
    }
    return nil
  })
  if err != nil {
    return nil, err
  }

  return &RecoveryQuestOutcome{
    RecoveryQuestResponse: responseText,
    CoachingFeedback:      coaching.Feedback,
    ResilienceStatGain:    coaching.ResilienceGain,
    XPAwarded:             xpAwarded,
  }, nil
}
