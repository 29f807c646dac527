package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/xecuteapp/becoming-backend/internal/types"
)

func completedStatus() *types.FocusBlockStatus {
  s := types.FocusBlockCompleted
  return &s
}

func TestCreateFocusBlockRequiresIntention(t *testing.T) {
  f := newFixture(t)
  _, err := f.blockSvc.Create(context.Background(), f.user.ID, CreateFocusBlockInput{Intention: "Draft outline"})
  wantAPIStatus(t, err, 404)
}

func TestCreateFocusBlockDefaultsDuration(t *testing.T) {
  f := newFixture(t)
  f.createIntention(t, 5)

  block, err := f.blockSvc.Create(context.Background(), f.user.ID, CreateFocusBlockInput{Intention: "Draft outline"})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }
  if block.DurationMinutes != 50 {
    t.Fatalf("duration = %d, want default 50", block.DurationMinutes)
  }
  if block.Status != types.FocusBlockPending {
    t.Fatalf("status = %s, want pending", block.Status)
  }
}

func TestOneActiveFocusBlockAtATime(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)

  first, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Draft outline", DurationMinutes: 30})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }

  _, err = f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Second block", DurationMinutes: 30})
  wantAPIStatus(t, err, 409)

  // Completing the active block frees the slot.
  if _, err := f.blockSvc.Update(ctx, f.user.ID, first.ID, UpdateFocusBlockInput{Status: completedStatus()}); err != nil {
    t.Fatalf("complete block: %v", err)
  }
  if _, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Second block", DurationMinutes: 30}); err != nil {
    t.Fatalf("create after completion: %v", err)
  }
}

func TestCompleteFocusBlockAwardsXPOnce(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  block, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Draft outline", DurationMinutes: 30})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }

  out, err := f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: completedStatus()})
  if err != nil {
    t.Fatalf("complete block: %v", err)
  }
  // streak 0: no bonus
  if out.XPAwarded != 10 {
    t.Fatalf("xp_awarded = %d, want 10", out.XPAwarded)
  }
  if got := f.stats(t).XP; got != 10 {
    t.Fatalf("stats xp = %d, want 10", got)
  }
  // Completing a focus block never advances the streak.
  if user := f.reloadUser(t); user.CurrentStreak != 0 {
    t.Fatalf("streak advanced by focus block: %d", user.CurrentStreak)
  }

  // Re-patching an already-completed block awards nothing.
  out, err = f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: completedStatus()})
  if err != nil {
    t.Fatalf("re-patch block: %v", err)
  }
  if out.XPAwarded != 0 {
    t.Fatalf("second completion awarded %d XP, want 0", out.XPAwarded)
  }
  if got := f.stats(t).XP; got != 10 {
    t.Fatalf("stats xp = %d after re-patch, want 10", got)
  }
}

func TestCompleteFocusBlockStreakBonus(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.setStreak(t, 10, 10, f.clock.Now().UTC())
  f.createIntention(t, 5)
  block, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Deep work", DurationMinutes: 50})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }

  out, err := f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: completedStatus()})
  if err != nil {
    t.Fatalf("complete block: %v", err)
  }
  // 10 * 1.10 = 11
  if out.XPAwarded != 11 {
    t.Fatalf("xp_awarded = %d, want 11", out.XPAwarded)
  }
}

// The ActiveExists pre-check is advisory under concurrency; the partial
// unique index on non-completed blocks must reject the second insert itself.
func TestActiveFocusBlockRejectedByStorage(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  intention := f.createIntention(t, 5)

  seed := func(status types.FocusBlockStatus) *types.FocusBlock {
    return &types.FocusBlock{
      ID:               uuid.New(),
      DailyIntentionID: intention.ID,
      Intention:        "Draft outline",
      DurationMinutes:  50,
      Status:           status,
    }
  }

  // Completed blocks stay outside the active slot.
  if _, err := f.focusBlockRepo.Create(ctx, nil, seed(types.FocusBlockCompleted)); err != nil {
    t.Fatalf("completed insert: %v", err)
  }
  if _, err := f.focusBlockRepo.Create(ctx, nil, seed(types.FocusBlockPending)); err != nil {
    t.Fatalf("first active insert: %v", err)
  }
  _, err := f.focusBlockRepo.Create(ctx, nil, seed(types.FocusBlockInProgress))
  if !errors.Is(err, gorm.ErrDuplicatedKey) {
    t.Fatalf("second active insert: err = %v, want duplicated key", err)
  }
}

func TestCompletedFocusBlockCannotReopen(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  block, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Draft outline", DurationMinutes: 30})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }
  if _, err := f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: completedStatus()}); err != nil {
    t.Fatalf("complete block: %v", err)
  }

  pending := types.FocusBlockPending
  _, err = f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: &pending})
  wantAPIStatus(t, err, 409)
}

func TestStaleFocusBlockIsFrozen(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  block, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Draft outline", DurationMinutes: 30})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }

  f.clock.Advance(24 * time.Hour)

  _, err = f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{Status: completedStatus()})
  wantAPIStatus(t, err, 403)
}

func TestUpdateFocusBlockVideoURLs(t *testing.T) {
  f := newFixture(t)
  ctx := context.Background()
  f.createIntention(t, 5)
  block, err := f.blockSvc.Create(ctx, f.user.ID, CreateFocusBlockInput{Intention: "Draft outline", DurationMinutes: 30})
  if err != nil {
    t.Fatalf("create block: %v", err)
  }

  pre := "https://cdn.example.com/pre.mp4"
  out, err := f.blockSvc.Update(ctx, f.user.ID, block.ID, UpdateFocusBlockInput{PreBlockVideoURL: &pre})
  if err != nil {
    t.Fatalf("patch block: %v", err)
  }
  if out.Block.PreBlockVideoURL == nil || *out.Block.PreBlockVideoURL != pre {
    t.Fatalf("pre_block_video_url = %v", out.Block.PreBlockVideoURL)
  }
  if out.XPAwarded != 0 {
    t.Fatalf("video patch awarded %d XP", out.XPAwarded)
  }
  if out.Block.Status != types.FocusBlockPending {
    t.Fatalf("status mutated by video patch: %s", out.Block.Status)
  }
}
