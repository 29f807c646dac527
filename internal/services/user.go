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

// StatsView is CharacterStats plus the derived level and XP thresholds.
type StatsView struct {
  UserID          uuid.UUID `json:"user_id"`
  Level           int       `json:"level"`
  XP              int       `json:"xp"`
  XPForNextLevel  int       `json:"xp_for_next_level"`
  XPNeededToLevel int       `json:"xp_needed_to_level"`
  Clarity         int       `json:"clarity"`
  Discipline      int       `json:"discipline"`
  Resilience      int       `json:"resilience"`
  Commitment      int       `json:"commitment"`
}

// GameState is everything the client needs to render the day on app load.
type GameState struct {
  User                *types.User           `json:"user"`
  Stats               *StatsView            `json:"stats"`
  TodaysIntention     *types.DailyIntention `json:"todays_intention"`
  UnresolvedIntention *types.DailyIntention `json:"unresolved_intention"`
}

type UserService interface {
  GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
  UpdateGoal(ctx context.Context, userID uuid.UUID, goal string) (*types.User, error)
  GetStats(ctx context.Context, userID uuid.UUID) (*StatsView, error)
  GetGameState(ctx context.Context, userID uuid.UUID) (*GameState, error)
}

type userService struct {
  db                 *gorm.DB
  log                *logger.Logger
  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  dailyIntentionRepo repos.DailyIntentionRepo

  now func() time.Time
}

func NewUserService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  characterStatsRepo repos.CharacterStatsRepo,
  dailyIntentionRepo repos.DailyIntentionRepo,
) UserService {
  return &userService{
    db:                 db,
    log:                log.With("service", "UserService"),
    userRepo:           userRepo,
    characterStatsRepo: characterStatsRepo,
    dailyIntentionRepo: dailyIntentionRepo,
    now:                time.Now,
  }
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  user, err := us.userRepo.GetByID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("failed to load user: %w", err)
  }
  if user == nil {
    return nil, apierr.NotFound("user not found")
  }
  return user, nil
}

// UpdateGoal sets the user's highest-leverage activity during onboarding.
// Completing onboarding is the player's first successful action, so it
// ignites the streak.
func (us *userService) UpdateGoal(ctx context.Context, userID uuid.UUID, goal string) (*types.User, error) {
  goal = strings.TrimSpace(goal)
  if goal == "" {
    return nil, apierr.InvalidArgument("highest_leverage_activity must not be empty")
  }

  var user *types.User
  err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var uErr error
    user, uErr = us.userRepo.GetByID(ctx, tx, userID)
    if uErr != nil {
      return fmt.Errorf("failed to load user: %w", uErr)
    }
    if user == nil {
      return apierr.NotFound("user not found")
    }
    if gErr := us.userRepo.UpdateGoal(ctx, tx, userID, goal); gErr != nil {
      return fmt.Errorf("failed to update goal: %w", gErr)
    }
    user.HighestLeverageActivity = &goal
    if game.UpdateStreak(user, us.now()) {
      if sErr := us.userRepo.SaveStreak(ctx, tx, user); sErr != nil {
        return fmt.Errorf("failed to save streak: %w", sErr)
      }
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return user, nil
}

func (us *userService) GetStats(ctx context.Context, userID uuid.UUID) (*StatsView, error) {
  stats, err := us.characterStatsRepo.GetOrCreateByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("failed to load character stats: %w", err)
  }
  return statsViewOf(stats), nil
}

func statsViewOf(stats *types.CharacterStats) *StatsView {
  level := game.Level(stats.XP)
  forNext := game.XPForNextLevel(stats.XP)
  return &StatsView{
    UserID:          stats.UserID,
    Level:           level,
    XP:              stats.XP,
    XPForNextLevel:  forNext,
    XPNeededToLevel: forNext - stats.XP,
    Clarity:         stats.Clarity,
    Discipline:      stats.Discipline,
    Resilience:      stats.Resilience,
    Commitment:      stats.Commitment,
  }
}

// GetGameState bundles the user, derived stats, today's intention and
// yesterday's unresolved intention in one read.
func (us *userService) GetGameState(ctx context.Context, userID uuid.UUID) (*GameState, error) {
  user, err := us.GetMe(ctx, userID)
  if err != nil {
    return nil, err
  }
  stats, err := us.characterStatsRepo.GetOrCreateByUserID(ctx, nil, userID)
  if err != nil {
    return nil, fmt.Errorf("failed to load character stats: %w", err)
  }

  now := us.now().UTC()
  todays, tErr := us.dailyIntentionRepo.GetForDay(ctx, nil, userID, now)
  if tErr != nil {
    return nil, fmt.Errorf("failed to load today's intention: %w", tErr)
  }
  unresolved, uErr := us.dailyIntentionRepo.GetUnresolvedForDay(ctx, nil, userID, now.AddDate(0, 0, -1))
  if uErr != nil {
    return nil, fmt.Errorf("failed to load yesterday's intention: %w", uErr)
  }

  return &GameState{
    User:                user,
    Stats:               statsViewOf(stats),
    TodaysIntention:     todays,
    UnresolvedIntention: unresolved,
  }, nil
}
