package services

import (
  "context"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/xecuteapp/becoming-backend/internal/types"
)

func TestUpdateGoalIgnitesStreak(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  user, err := f.userSvc.UpdateGoal(ctx, f.user.ID, "  Outbound sales calls  ")
  if err != nil {
    t.Fatalf("update goal: %v", err)
  }
  if user.HighestLeverageActivity == nil || *user.HighestLeverageActivity != "Outbound sales calls" {
    t.Fatalf("goal = %v, want trimmed text", user.HighestLeverageActivity)
  }
  if user.CurrentStreak != 1 || user.LongestStreak != 1 {
    t.Fatalf("streak current=%d longest=%d, want ignition to 1/1", user.CurrentStreak, user.LongestStreak)
  }

  // A second same-day onboarding edit must not double-credit the day.
  user, err = f.userSvc.UpdateGoal(ctx, f.user.ID, "Outbound sales calls, refined")
  if err != nil {
    t.Fatalf("second update: %v", err)
  }
  if user.CurrentStreak != 1 {
    t.Fatalf("same-day re-update advanced streak to %d", user.CurrentStreak)
  }
}

func TestUpdateGoalValidation(t *testing.T) {
  f := newFixture(t)
  _, err := f.userSvc.UpdateGoal(context.Background(), f.user.ID, "   ")
  wantAPIStatus(t, err, 400)
}

func TestGetStatsDerivesLevel(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  stats := f.stats(t)
  stats.XP = 250
  stats.Clarity = 3
  if err := f.characterStatsRepo.Save(ctx, nil, stats); err != nil {
    t.Fatalf("save stats: %v", err)
  }

  view, err := f.userSvc.GetStats(ctx, f.user.ID)
  if err != nil {
    t.Fatalf("get stats: %v", err)
  }
  if view.Level != 2 {
    t.Fatalf("level = %d, want 2 at 250 xp", view.Level)
  }
  if view.XPForNextLevel != 400 || view.XPNeededToLevel != 150 {
    t.Fatalf("xp thresholds = %d/%d, want 400/150", view.XPForNextLevel, view.XPNeededToLevel)
  }
  if view.Clarity != 3 {
    t.Fatalf("clarity = %d, want 3", view.Clarity)
  }
}

func TestGetGameState(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  // Yesterday's intention was left in progress with no result.
  yesterday := f.clock.Now().UTC().Add(-24 * time.Hour)
  stale := &types.DailyIntention{
    ID:                uuid.New(),
    UserID:            f.user.ID,
    CreatedDay:        types.DayKey(yesterday),
    IntentionText:     "Yesterday's unfinished work",
    TargetQuantity:    5,
    CompletedQuantity: 2,
    FocusBlockCount:   3,
    Status:            types.IntentionInProgress,
    CreatedAt:         yesterday,
  }
  if err := f.db.Create(stale).Error; err != nil {
    t.Fatalf("seed stale intention: %v", err)
  }

  todays := f.createIntention(t, 5)

  state, err := f.userSvc.GetGameState(ctx, f.user.ID)
  if err != nil {
    t.Fatalf("game state: %v", err)
  }
  if state.User.ID != f.user.ID {
    t.Fatalf("user = %s, want %s", state.User.ID, f.user.ID)
  }
  if state.Stats == nil || state.Stats.Level != 1 {
    t.Fatalf("stats = %+v, want fresh level 1", state.Stats)
  }
  if state.TodaysIntention == nil || state.TodaysIntention.ID != todays.ID {
    t.Fatal("game state missing today's intention")
  }
  if state.UnresolvedIntention == nil || state.UnresolvedIntention.ID != stale.ID {
    t.Fatal("game state missing yesterday's unresolved intention")
  }
}

func TestGetGameStateCreatesMissingStats(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  orphan := &types.User{
    ID:       uuid.New(),
    Email:    "orphan@example.com",
    Password: "irrelevant-hash",
    Name:     "Jordan",
  }
  if err := f.db.Create(orphan).Error; err != nil {
    t.Fatalf("seed user: %v", err)
  }

  state, err := f.userSvc.GetGameState(ctx, orphan.ID)
  if err != nil {
    t.Fatalf("game state: %v", err)
  }
  if state.Stats == nil || state.Stats.XP != 0 || state.Stats.Level != 1 {
    t.Fatalf("stats = %+v, want zeroed row created on demand", state.Stats)
  }
}
