package services

import (
  "context"
  "fmt"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  dbpkg "github.com/xecuteapp/becoming-backend/internal/db"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/repos"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type fakeClock struct {
  t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// scriptedCoach returns canned responses so tests control the coach verdicts
// without any provider in the loop.
type scriptedCoach struct {
  analysis  *IntentionAnalysis
  reflectFn func(ReflectionInput) Reflection
  recovery  *RecoveryCoaching
}

func (c *scriptedCoach) AnalyzeIntention(ctx context.Context, in IntentionAnalysisInput) IntentionAnalysis {
  if c.analysis != nil {
    return *c.analysis
  }
  return fallbackIntentionAnalysis()
}

func (c *scriptedCoach) ReflectOnDay(ctx context.Context, in ReflectionInput) Reflection {
  if c.reflectFn != nil {
    return c.reflectFn(in)
  }
  return fallbackReflection(in)
}

func (c *scriptedCoach) CoachRecovery(ctx context.Context, in RecoveryCoachingInput) RecoveryCoaching {
  if c.recovery != nil {
    return *c.recovery
  }
  return fallbackRecoveryCoaching()
}

type fixture struct {
  db    *gorm.DB
  clock *fakeClock
  coach *scriptedCoach
  user  *types.User

  userRepo           repos.UserRepo
  characterStatsRepo repos.CharacterStatsRepo
  dailyIntentionRepo repos.DailyIntentionRepo
  focusBlockRepo     repos.FocusBlockRepo
  dailyResultRepo    repos.DailyResultRepo

  userSvc      UserService
  intentionSvc IntentionService
  blockSvc     FocusBlockService
  resultSvc    DailyResultService
}

func newFixture(t *testing.T) *fixture {
  t.Helper()

  log, lErr := logger.New("dev")
  if lErr != nil {
    t.Fatalf("logger: %v", lErr)
  }

  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
  gdb, dErr := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
  if dErr != nil {
    t.Fatalf("open sqlite: %v", dErr)
  }
  if mErr := gdb.AutoMigrate(dbpkg.Entities()...); mErr != nil {
    t.Fatalf("migrate: %v", mErr)
  }

  clock := &fakeClock{t: time.Now().UTC()}
  coach := &scriptedCoach{}

  user := &types.User{
    ID:                        uuid.New(),
    Email:                     "player@example.com",
    Password:                  "irrelevant-hash",
    Name:                      "Avery",
    DefaultFocusBlockDuration: 50,
  }
  if err := gdb.Create(user).Error; err != nil {
    t.Fatalf("seed user: %v", err)
  }
  if err := gdb.Create(&types.CharacterStats{ID: uuid.New(), UserID: user.ID}).Error; err != nil {
    t.Fatalf("seed stats: %v", err)
  }

  f := &fixture{
    db:                 gdb,
    clock:              clock,
    coach:              coach,
    user:               user,
    userRepo:           repos.NewUserRepo(gdb, log),
    characterStatsRepo: repos.NewCharacterStatsRepo(gdb, log),
    dailyIntentionRepo: repos.NewDailyIntentionRepo(gdb, log),
    focusBlockRepo:     repos.NewFocusBlockRepo(gdb, log),
    dailyResultRepo:    repos.NewDailyResultRepo(gdb, log),
  }

  us := NewUserService(gdb, log, f.userRepo, f.characterStatsRepo, f.dailyIntentionRepo).(*userService)
  us.now = clock.Now
  f.userSvc = us

  is := NewIntentionService(gdb, log, f.userRepo, f.characterStatsRepo, f.dailyIntentionRepo, f.dailyResultRepo, coach).(*intentionService)
  is.now = clock.Now
  f.intentionSvc = is

  bs := NewFocusBlockService(gdb, log, f.userRepo, f.characterStatsRepo, f.dailyIntentionRepo, f.focusBlockRepo).(*focusBlockService)
  bs.now = clock.Now
  f.blockSvc = bs

  rs := NewDailyResultService(gdb, log, f.userRepo, f.characterStatsRepo, f.dailyResultRepo, coach).(*dailyResultService)
  rs.now = clock.Now
  f.resultSvc = rs

  return f
}

func (f *fixture) createIntention(t *testing.T, target int) *types.DailyIntention {
  t.Helper()
  intention, refinement, err := f.intentionSvc.Create(context.Background(), f.user.ID, CreateIntentionInput{
    IntentionText:   "Send 5 personalized outreach messages",
    TargetQuantity:  target,
    FocusBlockCount: 3,
  })
  if err != nil {
    t.Fatalf("create intention: %v", err)
  }
  if refinement != nil {
    t.Fatalf("unexpected refinement feedback: %+v", refinement)
  }
  return intention
}

func (f *fixture) stats(t *testing.T) *types.CharacterStats {
  t.Helper()
  stats, err := f.characterStatsRepo.GetByUserID(context.Background(), nil, f.user.ID)
  if err != nil || stats == nil {
    t.Fatalf("load stats: %v", err)
  }
  return stats
}

func (f *fixture) reloadUser(t *testing.T) *types.User {
  t.Helper()
  user, err := f.userRepo.GetByID(context.Background(), nil, f.user.ID)
  if err != nil || user == nil {
    t.Fatalf("load user: %v", err)
  }
  return user
}

// setStreak seeds streak state directly instead of replaying a multi-day
// history. lastUpdate controls whether the next successful action credits a
// new day or is a same-day no-op.
func (f *fixture) setStreak(t *testing.T, current, longest int, lastUpdate time.Time) {
  t.Helper()
  f.user.CurrentStreak = current
  f.user.LongestStreak = longest
  f.user.LastStreakUpdate = &lastUpdate
  if err := f.userRepo.SaveStreak(context.Background(), nil, f.user); err != nil {
    t.Fatalf("save streak: %v", err)
  }
}
