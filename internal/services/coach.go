package services

import (
  "context"
  "encoding/json"
  "fmt"
  "os"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/repos"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

// Coach is the accountability-and-clarity collaborator. Every method returns a
// usable result even when the underlying provider is down: callers get the
// canned fallback instead of an error, so a provider outage never blocks the
// player's day.
type Coach interface {
  AnalyzeIntention(ctx context.Context, in IntentionAnalysisInput) IntentionAnalysis
  ReflectOnDay(ctx context.Context, in ReflectionInput) Reflection
  CoachRecovery(ctx context.Context, in RecoveryCoachingInput) RecoveryCoaching
}

type IntentionAnalysisInput struct {
  UserName         string
  LeverageActivity string
  IntentionText    string
  TargetQuantity   int
  FocusBlockCount  int
}

type IntentionAnalysis struct {
  IsStrong    bool   `json:"is_strong_intention"`
  Feedback    string `json:"feedback"`
  ClarityGain int    `json:"clarity_stat_gain"`
}

type ReflectionInput struct {
  UserName         string
  LeverageActivity string
  IntentionText    string
  TargetQuantity   int
  AchievedQuantity int
  CompletionRate   float64
  Succeeded        bool
}

type Reflection struct {
  Feedback       string  `json:"ai_feedback"`
  RecoveryQuest  *string `json:"recovery_quest"`
  DisciplineGain int     `json:"discipline_stat_gain"`
}

type RecoveryCoachingInput struct {
  UserName      string
  IntentionText string
  RecoveryQuest string
  ResponseText  string
}

type RecoveryCoaching struct {
  Feedback       string `json:"ai_coaching_feedback"`
  ResilienceGain int    `json:"resilience_stat_gain"`
}

// Fallbacks. Served verbatim whenever the provider errors or is disabled, and
// always shaped so downstream game rules still fire (a failed day still gets a
// quest, a strong intention still earns clarity).
func fallbackIntentionAnalysis() IntentionAnalysis {
  return IntentionAnalysis{
    IsStrong:    true,
    Feedback:    "Great! Let's get to work.",
    ClarityGain: 1,
  }
}

func fallbackReflection(in ReflectionInput) Reflection {
  r := Reflection{Feedback: "Great work reflecting today."}
  if in.Succeeded {
    r.DisciplineGain = 1
    return r
  }
  quest := fallbackRecoveryQuest(in.CompletionRate)
  r.Feedback = fmt.Sprintf("You achieved %.0f%% of your intention. Let's turn this into learning...", in.CompletionRate)
  r.RecoveryQuest = &quest
  return r
}

// fallbackRecoveryQuest picks a reflection question by completion bucket, the
// same buckets the provider prompt asks for.
func fallbackRecoveryQuest(completionRate float64) string {
  switch {
  case completionRate <= 0:
    return "When you felt resistance to starting, what was the inner voice telling you?"
  case completionRate <= 50:
    return "What specific distraction pulled you away when you were in the middle of making progress?"
  default:
    return "You were so close! What was happening in your environment or mindset that prevented that final step?"
  }
}

func fallbackRecoveryCoaching() RecoveryCoaching {
  return RecoveryCoaching{
    Feedback:       "Thank you for sharing. This is how we grow.",
    ResilienceGain: 1,
  }
}

// staticCoach serves the fallbacks unconditionally. Used when DISABLE_AI_CALLS
// is set or no provider key is configured, and as the scripted baseline in
// tests.
type staticCoach struct {
  log *logger.Logger
}

func NewStaticCoach(log *logger.Logger) Coach {
  return &staticCoach{log: log.With("service", "StaticCoach")}
}

func (c *staticCoach) AnalyzeIntention(ctx context.Context, in IntentionAnalysisInput) IntentionAnalysis {
  return fallbackIntentionAnalysis()
}

func (c *staticCoach) ReflectOnDay(ctx context.Context, in ReflectionInput) Reflection {
  return fallbackReflection(in)
}

func (c *staticCoach) CoachRecovery(ctx context.Context, in RecoveryCoachingInput) RecoveryCoaching {
  return fallbackRecoveryCoaching()
}

// NewCoachFromEnv wires the configured provider, falling back to the static
// coach rather than failing startup when no key is present.
func NewCoachFromEnv(log *logger.Logger) Coach {
  if os.Getenv("DISABLE_AI_CALLS") == "True" {
    log.Info("AI calls disabled, serving static coach responses")
    return NewStaticCoach(log)
  }
  coach, err := NewAnthropicCoach(log)
  if err != nil {
    log.Warn("Coach provider unavailable, serving static responses", "error", err)
    return NewStaticCoach(log)
  }
  return coach
}

// loggingCoach decorates a Coach with a persisted audit trail of every
// exchange, fallback responses included.
type loggingCoach struct {
  inner           Coach
  db              *gorm.DB
  log             *logger.Logger
  coachingLogRepo repos.CoachingLogRepo
}

func NewLoggingCoach(inner Coach, db *gorm.DB, log *logger.Logger, coachingLogRepo repos.CoachingLogRepo) Coach {
  return &loggingCoach{
    inner:           inner,
    db:              db,
    log:             log.With("service", "LoggingCoach"),
    coachingLogRepo: coachingLogRepo,
  }
}

// coachUserKey carries the acting user through to the audit row. The coach
// interface itself stays provider-shaped and user-agnostic.
type coachUserKey struct{}

func WithCoachUser(ctx context.Context, userID uuid.UUID) context.Context {
  return context.WithValue(ctx, coachUserKey{}, userID)
}

func coachUserFrom(ctx context.Context) (uuid.UUID, bool) {
  id, ok := ctx.Value(coachUserKey{}).(uuid.UUID)
  return id, ok
}

func (c *loggingCoach) record(ctx context.Context, trigger, userText, feedback string, meta any) {
  userID, ok := coachUserFrom(ctx)
  if !ok {
    return
  }
  raw, err := json.Marshal(meta)
  if err != nil {
    raw = []byte("{}")
  }
  row := &types.CoachingLog{
    ID:       uuid.New(),
    UserID:   userID,
    Trigger:  trigger,
    UserText: userText,
    Feedback: feedback,
    Metadata: datatypes.JSON(raw),
  }
  if _, err := c.coachingLogRepo.Create(ctx, c.db, row); err != nil {
    // The exchange already happened; losing the audit row is not worth
    // failing the player's action over.
    c.log.Warn("Failed to persist coaching log", "trigger", trigger, "error", err)
  }
}

func (c *loggingCoach) AnalyzeIntention(ctx context.Context, in IntentionAnalysisInput) IntentionAnalysis {
  out := c.inner.AnalyzeIntention(ctx, in)
  c.record(ctx, "intention_created", in.IntentionText, out.Feedback, out)
  return out
}

func (c *loggingCoach) ReflectOnDay(ctx context.Context, in ReflectionInput) Reflection {
  out := c.inner.ReflectOnDay(ctx, in)
  c.record(ctx, "daily_reflection", in.IntentionText, out.Feedback, out)
  return out
}

func (c *loggingCoach) CoachRecovery(ctx context.Context, in RecoveryCoachingInput) RecoveryCoaching {
  out := c.inner.CoachRecovery(ctx, in)
  c.record(ctx, "recovery_quest_response", in.ResponseText, out.Feedback, out)
  return out
}
