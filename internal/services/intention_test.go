package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

func wantAPIStatus(t *testing.T, err error, status int) {
  t.Helper()
  if err == nil {
    t.Fatalf("expected error with status %d, got nil", status)
  }
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) {
    t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
  }
  if apiErr.Status != status {
    t.Fatalf("status = %d, want %d (%v)", apiErr.Status, status, err)
  }
}

func TestCreateIntentionOnePerDay(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  intention := f.createIntention(t, 5)
  if intention.Status != types.IntentionPending {
    t.Fatalf("status = %s, want pending", intention.Status)
  }
  if intention.CompletedQuantity != 0 {
    t.Fatalf("completed_quantity = %d, want 0", intention.CompletedQuantity)
  }

  _, _, err := f.intentionSvc.Create(ctx, f.user.ID, CreateIntentionInput{
    IntentionText:   "Another one",
    TargetQuantity:  3,
    FocusBlockCount: 2,
  })
  wantAPIStatus(t, err, 409)
}

// Two writers can both pass the service-level existence check; the unique
// index over (user_id, created_day) must reject the second insert on its own.
func TestSameDayIntentionRejectedByStorage(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  day := types.DayKey(f.clock.Now())

  seed := func(text string, createdDay string) *types.DailyIntention {
    return &types.DailyIntention{
      ID:              uuid.New(),
      UserID:          f.user.ID,
      CreatedDay:      createdDay,
      IntentionText:   text,
      TargetQuantity:  5,
      FocusBlockCount: 3,
      Status:          types.IntentionPending,
    }
  }

  if _, err := f.dailyIntentionRepo.Create(ctx, nil, seed("First commitment", day)); err != nil {
    t.Fatalf("first insert: %v", err)
  }
  _, err := f.dailyIntentionRepo.Create(ctx, nil, seed("Racing duplicate", day))
  if !errors.Is(err, gorm.ErrDuplicatedKey) {
    t.Fatalf("second same-day insert: err = %v, want duplicated key", err)
  }

  nextDay := types.DayKey(f.clock.Now().Add(24 * time.Hour))
  if _, err := f.dailyIntentionRepo.Create(ctx, nil, seed("Tomorrow's commitment", nextDay)); err != nil {
    t.Fatalf("next-day insert: %v", err)
  }
}

func TestCreateIntentionValidation(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()

  cases := []struct {
    name string
    in   CreateIntentionInput
  }{
    {"empty_text", CreateIntentionInput{IntentionText: "   ", TargetQuantity: 5, FocusBlockCount: 3}},
    {"zero_target", CreateIntentionInput{IntentionText: "Ship it", TargetQuantity: 0, FocusBlockCount: 3}},
    {"target_over_100", CreateIntentionInput{IntentionText: "Ship it", TargetQuantity: 101, FocusBlockCount: 3}},
    {"zero_blocks", CreateIntentionInput{IntentionText: "Ship it", TargetQuantity: 5, FocusBlockCount: 0}},
    {"blocks_over_30", CreateIntentionInput{IntentionText: "Ship it", TargetQuantity: 5, FocusBlockCount: 31}},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      _, _, err := f.intentionSvc.Create(ctx, f.user.ID, tc.in)
      wantAPIStatus(t, err, 400)
    })
  }
}

func TestCreateIntentionRefinementGate(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.coach.analysis = &IntentionAnalysis{
    IsStrong:    false,
    Feedback:    "Too vague. What exactly will you ship?",
    ClarityGain: 0,
  }

  in := CreateIntentionInput{IntentionText: "Work on my business", TargetQuantity: 1, FocusBlockCount: 1}

  intention, refinement, err := f.intentionSvc.Create(ctx, f.user.ID, in)
  if err != nil {
    t.Fatalf("create: %v", err)
  }
  if intention != nil {
    t.Fatal("weak first submission must not be persisted")
  }
  if refinement == nil || refinement.Feedback != "Too vague. What exactly will you ship?" {
    t.Fatalf("refinement = %+v", refinement)
  }

  // Nothing was stored, so a refined re-submission is not a duplicate.
  in.IsRefined = true
  intention, refinement, err = f.intentionSvc.Create(ctx, f.user.ID, in)
  if err != nil {
    t.Fatalf("refined create: %v", err)
  }
  if refinement != nil {
    t.Fatal("refined submission must bypass the gate")
  }
  if intention == nil {
    t.Fatal("refined submission must be persisted despite the weak verdict")
  }

  if got := f.stats(t).Clarity; got != 0 {
    t.Fatalf("clarity = %d, want 0 for a weak intention", got)
  }
}

func TestCreateIntentionClarityGain(t *testing.T) {
  f := newFixture(t)
  f.coach.analysis = &IntentionAnalysis{IsStrong: true, Feedback: "Clear and aligned.", ClarityGain: 1}

  intention := f.createIntention(t, 5)
  if intention.CoachFeedback == nil || *intention.CoachFeedback != "Clear and aligned." {
    t.Fatalf("coach_feedback = %v", intention.CoachFeedback)
  }
  if got := f.stats(t).Clarity; got != 1 {
    t.Fatalf("clarity = %d, want 1", got)
  }
}

func TestReportProgressMonotonicAndClamped(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)

  intention, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 3)
  if err != nil {
    t.Fatalf("progress: %v", err)
  }
  if intention.CompletedQuantity != 3 || intention.Status != types.IntentionInProgress {
    t.Fatalf("got %d/%s, want 3/in_progress", intention.CompletedQuantity, intention.Status)
  }

  _, err = f.intentionSvc.ReportProgress(ctx, f.user.ID, 2)
  wantAPIStatus(t, err, 400)

  intention, err = f.intentionSvc.ReportProgress(ctx, f.user.ID, 12)
  if err != nil {
    t.Fatalf("progress: %v", err)
  }
  if intention.CompletedQuantity != 5 {
    t.Fatalf("completed_quantity = %d, want clamp to target 5", intention.CompletedQuantity)
  }
  if intention.Status != types.IntentionCompleted {
    t.Fatalf("status = %s, want completed", intention.Status)
  }
}

func TestReportProgressZeroStaysPending(t *testing.T) {
  f := newFixture(t)
  f.createIntention(t, 5)

  intention, err := f.intentionSvc.ReportProgress(context.Background(), f.user.ID, 0)
  if err != nil {
    t.Fatalf("progress: %v", err)
  }
  if intention.Status != types.IntentionPending {
    t.Fatalf("status = %s, want pending", intention.Status)
  }
}

func TestCompleteRequiresFullProgress(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  if _, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 4); err != nil {
    t.Fatalf("progress: %v", err)
  }

  _, err := f.intentionSvc.Complete(ctx, f.user.ID)
  wantAPIStatus(t, err, 412)
}

func TestCompleteAwardsAndAdvancesStreak(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  if _, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 5); err != nil {
    t.Fatalf("progress: %v", err)
  }

  result, err := f.intentionSvc.Complete(ctx, f.user.ID)
  if err != nil {
    t.Fatalf("complete: %v", err)
  }
  if !result.Succeeded {
    t.Fatal("result.Succeeded = false, want true")
  }
  if result.RecoveryQuest != nil {
    t.Fatalf("recovery_quest = %v, want nil on success", *result.RecoveryQuest)
  }
  // Streak was 0 before the action, so the bonus is identity.
  if result.XPAwarded != 20 {
    t.Fatalf("xp_awarded = %d, want 20", result.XPAwarded)
  }

  stats := f.stats(t)
  if stats.XP != 20 || stats.Discipline != 1 {
    t.Fatalf("stats xp=%d discipline=%d, want 20/1", stats.XP, stats.Discipline)
  }
  user := f.reloadUser(t)
  if user.CurrentStreak != 1 || user.LongestStreak != 1 {
    t.Fatalf("streak current=%d longest=%d, want 1/1", user.CurrentStreak, user.LongestStreak)
  }

  _, err = f.intentionSvc.Complete(ctx, f.user.ID)
  wantAPIStatus(t, err, 412)
}

func TestCompleteAppliesStreakBonus(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.setStreak(t, 10, 10, f.clock.Now().UTC())
  f.createIntention(t, 2)
  if _, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 2); err != nil {
    t.Fatalf("progress: %v", err)
  }

  result, err := f.intentionSvc.Complete(ctx, f.user.ID)
  if err != nil {
    t.Fatalf("complete: %v", err)
  }
  // 20 * 1.10 = 22
  if result.XPAwarded != 22 {
    t.Fatalf("xp_awarded = %d, want 22", result.XPAwarded)
  }
}

func TestFailCreatesRecoveryQuest(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  if _, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 3); err != nil {
    t.Fatalf("progress: %v", err)
  }

  result, err := f.intentionSvc.Fail(ctx, f.user.ID)
  if err != nil {
    t.Fatalf("fail: %v", err)
  }
  if result.Succeeded {
    t.Fatal("result.Succeeded = true, want false")
  }
  if result.RecoveryQuest == nil || *result.RecoveryQuest == "" {
    t.Fatal("failed day must carry a recovery quest")
  }
  if result.XPAwarded != 0 || result.DisciplineStatGain != 0 {
    t.Fatalf("failure granted xp=%d discipline=%d, want 0/0", result.XPAwarded, result.DisciplineStatGain)
  }

  stats := f.stats(t)
  if stats.XP != 0 || stats.Discipline != 0 {
    t.Fatalf("stats mutated on failure: xp=%d discipline=%d", stats.XP, stats.Discipline)
  }
  // Failing is not a successful action.
  if user := f.reloadUser(t); user.CurrentStreak != 0 {
    t.Fatalf("streak advanced on failure: %d", user.CurrentStreak)
  }

  _, err = f.intentionSvc.Fail(ctx, f.user.ID)
  wantAPIStatus(t, err, 409)
}

func TestProgressFrozenAfterResult(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  if _, err := f.intentionSvc.Fail(ctx, f.user.ID); err != nil {
    t.Fatalf("fail: %v", err)
  }

  _, err := f.intentionSvc.ReportProgress(ctx, f.user.ID, 1)
  wantAPIStatus(t, err, 409)
}

func TestGetTodayNotFound(t *testing.T) {
  f := newFixture(t)
  _, err := f.intentionSvc.GetToday(context.Background(), f.user.ID)
  wantAPIStatus(t, err, 404)
}
