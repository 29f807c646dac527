package services

import (
  "bytes"
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "io"
  "math/rand"
  "net"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/utils"
)

// anthropicCoach talks to the Anthropic Messages API with forced tool use so
// the model must answer in the requested schema. Any failure after retries
// degrades to the static fallback for that exchange.
type anthropicCoach struct {
  log        *logger.Logger
  baseURL    string
  apiKey     string
  model      string
  maxTokens  int
  httpClient *http.Client

  maxRetries int
}

func NewAnthropicCoach(log *logger.Logger) (Coach, error) {
  apiKey := os.Getenv("ANTHROPIC_API_KEY")
  if apiKey == "" {
    return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
  }

  baseURL := os.Getenv("ANTHROPIC_BASE_URL")
  if baseURL == "" {
    baseURL = "https://api.anthropic.com"
  }

  model := os.Getenv("ANTHROPIC_MODEL")
  if model == "" {
    model = "claude-3-5-sonnet-20241022"
  }

  timeoutSec := utils.GetEnvAsInt("ANTHROPIC_TIMEOUT_SECONDS", 60, log)
  if timeoutSec <= 0 {
    timeoutSec = 60
  }

  maxRetries := utils.GetEnvAsInt("ANTHROPIC_MAX_RETRIES", 3, log)
  if maxRetries < 0 {
    maxRetries = 3
  }

  return &anthropicCoach{
    log:        log.With("service", "AnthropicCoach"),
    baseURL:    baseURL,
    apiKey:     apiKey,
    model:      model,
    maxTokens:  2048,
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    maxRetries: maxRetries,
  }, nil
}

type anthropicHTTPError struct {
  StatusCode int
  Body       string
}

func (e *anthropicHTTPError) Error() string {
  return fmt.Sprintf("anthropic http %d: %s", e.StatusCode, e.Body)
}

func anthropicRetryableHTTP(code int) bool {
  if code == 408 || code == 429 {
    return true
  }
  if code == 529 {
    // overloaded_error
    return true
  }
  return code >= 500 && code <= 599
}

func anthropicRetryableErr(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
    return true
  }
  var netErr net.Error
  if errors.As(err, &netErr) {
    if netErr.Timeout() {
      return true
    }
  }
  var httpErr *anthropicHTTPError
  if errors.As(err, &httpErr) {
    return anthropicRetryableHTTP(httpErr.StatusCode)
  }
  return false
}

func coachJitterSleep(base time.Duration) time.Duration {
  // +/- 20%
  if base <= 0 {
    return 0
  }
  j := 0.2
  delta := base.Seconds() * j
  low := base.Seconds() - delta
  high := base.Seconds() + delta
  if low < 0 {
    low = 0
  }
  v := low + rand.Float64()*(high-low)
  return time.Duration(v * float64(time.Second))
}

type anthropicTool struct {
  Name        string         `json:"name"`
  Description string         `json:"description"`
  InputSchema map[string]any `json:"input_schema"`
}

type anthropicMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type anthropicRequest struct {
  Model       string             `json:"model"`
  MaxTokens   int                `json:"max_tokens"`
  Temperature float64            `json:"temperature"`
  System      string             `json:"system"`
  Messages    []anthropicMessage `json:"messages"`
  Tools       []anthropicTool    `json:"tools"`
  ToolChoice  map[string]any     `json:"tool_choice"`
}

type anthropicContentBlock struct {
  Type  string          `json:"type"`
  Input json.RawMessage `json:"input"`
}

type anthropicResponse struct {
  Content []anthropicContentBlock `json:"content"`
}

func (c *anthropicCoach) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
  var buf bytes.Buffer
  if err := json.NewEncoder(&buf).Encode(body); err != nil {
    return nil, nil, err
  }

  req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", &buf)
  if err != nil {
    return nil, nil, err
  }
  req.Header.Set("x-api-key", c.apiKey)
  req.Header.Set("anthropic-version", "2023-06-01")
  req.Header.Set("Content-Type", "application/json")

  resp, err := c.httpClient.Do(req)
  if err != nil {
    return nil, nil, err
  }

  raw, readErr := io.ReadAll(resp.Body)
  _ = resp.Body.Close()
  if readErr != nil {
    return resp, nil, readErr
  }

  if resp.StatusCode < 200 || resp.StatusCode >= 300 {
    return resp, raw, &anthropicHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
  }
  return resp, raw, nil
}

// generateStructured forces the model to call the given tool and decodes the
// tool's input block into out.
func (c *anthropicCoach) generateStructured(ctx context.Context, system, user, toolName string, schema map[string]any, out any) error {
  body := anthropicRequest{
    Model:       c.model,
    MaxTokens:   c.maxTokens,
    Temperature: 0.3,
    System:      system,
    Messages:    []anthropicMessage{{Role: "user", Content: user}},
    Tools: []anthropicTool{{
      Name:        toolName,
      Description: "Tool for structured output.",
      InputSchema: schema,
    }},
    ToolChoice: map[string]any{"type": "tool", "name": toolName},
  }

  backoff := 1 * time.Second

  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if ctx.Err() != nil {
      return ctx.Err()
    }

    resp, raw, err := c.doOnce(ctx, body)
    if err == nil {
      var parsed anthropicResponse
      if uErr := json.Unmarshal(raw, &parsed); uErr != nil {
        return fmt.Errorf("anthropic decode error: %w; raw=%s", uErr, string(raw))
      }
      for _, block := range parsed.Content {
        if block.Type == "tool_use" {
          return json.Unmarshal(block.Input, out)
        }
      }
      return fmt.Errorf("model did not use the requested tool")
    }

    if !anthropicRetryableErr(err) {
      return err
    }
    if attempt == c.maxRetries {
      return err
    }

    sleepFor := backoff
    if resp != nil {
      ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
      if ra != "" {
        if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
          sleepFor = time.Duration(secs) * time.Second
        }
      }
    }

    if sleepFor > 10*time.Second {
      sleepFor = 10 * time.Second
    }
    sleepFor = coachJitterSleep(sleepFor)

    c.log.Warn("Anthropic request retrying",
      "tool", toolName,
      "attempt", attempt+1,
      "max_retries", c.maxRetries,
      "sleep", sleepFor.String(),
      "error", err.Error(),
    )

    time.Sleep(sleepFor)
    backoff *= 2
  }

  return fmt.Errorf("unreachable retry loop")
}

func (c *anthropicCoach) AnalyzeIntention(ctx context.Context, in IntentionAnalysisInput) IntentionAnalysis {
  system := `You are the AI Accountability and Clarity Coach for The Game of Becoming. Your role is to analyze daily intentions and provide encouraging, actionable feedback.

Your task is to determine if the user's intention is strong and clear enough for them to commit to. A strong intention is specific, measurable, actionable, and aligned with their main goal.

Call the IntentionAnalysis tool with your verdict.`

  user := fmt.Sprintf(`Here is the user's data:
- User's highest-leverage activity: %q
- Today's daily intention: %q
- Target quantity: %d
- Planned focus block count: %d

Analyze this intention. Is it specific, measurable, actionable, and aligned with their highest-leverage activity?

Example of a strong intention: "Send 5 personalized LinkedIn connection requests to potential clients in the SaaS industry." It is specific, measurable (5), and actionable.
Example of an intention needing refinement: "Work on my business." It is vague and not measurable.`,
    in.LeverageActivity, in.IntentionText, in.TargetQuantity, in.FocusBlockCount)

  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "is_strong_intention": map[string]any{
        "type":        "boolean",
        "description": "True if the intention is clear, specific, and ready for commitment. False if it needs refinement.",
      },
      "feedback": map[string]any{
        "type":        "string",
        "description": "Encouraging, actionable coaching feedback for the user (2-3 sentences max).",
      },
      "clarity_stat_gain": map[string]any{
        "type":        "integer",
        "description": "Set to 1 if is_strong_intention is true, otherwise 0.",
      },
    },
    "required": []string{"is_strong_intention", "feedback", "clarity_stat_gain"},
  }

  var out IntentionAnalysis
  if err := c.generateStructured(ctx, system, user, "IntentionAnalysis", schema, &out); err != nil {
    c.log.Warn("Intention analysis failed, serving fallback", "error", err)
    return fallbackIntentionAnalysis()
  }
  return out
}

func (c *anthropicCoach) ReflectOnDay(ctx context.Context, in ReflectionInput) Reflection {
  system := `You are the AI Accountability and Clarity Coach for The Game of Becoming. A user is ending their day. Your job is to provide a final reflection.

If the user SUCCEEDED, your feedback should be a concise, genuine, and energizing celebration (1-2 sentences).
If the user FAILED, you must generate a Recovery Quest - a single, thoughtful question that turns failure into learning, based on their completion rate. Also provide introductory feedback.

Call the DailyReflection tool with your response.`

  outcome := "FAILED"
  if in.Succeeded {
    outcome = "SUCCEEDED"
  }

  user := fmt.Sprintf(`User data:
- User's name: %s
- User's highest-leverage activity: %q
- Daily intention: %q
- Target: %d
- Achieved: %d
- Outcome: %s

If the outcome was SUCCEEDED: acknowledge the specific achievement and connect it to their goals. Leave recovery_quest null and set discipline_stat_gain to 1.

If the outcome was FAILED: set ai_feedback to "You achieved %.0f%% of your intention. Let's turn this into learning...", set discipline_stat_gain to 0, and create a recovery_quest based on the completion level:
- 0%% completion: focus on barriers to starting.
- 1-50%% completion: focus on momentum and distraction issues.
- 51-99%% completion: focus on finishing and persistence.`,
    in.UserName, in.LeverageActivity, in.IntentionText, in.TargetQuantity, in.AchievedQuantity, outcome, in.CompletionRate)

  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "ai_feedback": map[string]any{
        "type":        "string",
        "description": "If successful, a celebratory message. If failed, an acknowledgement of the completion rate.",
      },
      "recovery_quest": map[string]any{
        "type":        []string{"string", "null"},
        "description": "A specific, actionable recovery quest (a single question) if the day was a failure. Null if successful.",
      },
      "discipline_stat_gain": map[string]any{
        "type":        "integer",
        "description": "1 for success, 0 for failure.",
      },
    },
    "required": []string{"ai_feedback", "discipline_stat_gain"},
  }

  var out Reflection
  if err := c.generateStructured(ctx, system, user, "DailyReflection", schema, &out); err != nil {
    c.log.Warn("Daily reflection failed, serving fallback", "error", err)
    return fallbackReflection(in)
  }
  // A failed day must carry a quest even when the model forgets one.
  if !in.Succeeded && (out.RecoveryQuest == nil || *out.RecoveryQuest == "") {
    quest := fallbackRecoveryQuest(in.CompletionRate)
    out.RecoveryQuest = &quest
  }
  if in.Succeeded {
    out.RecoveryQuest = nil
  }
  return out
}

func (c *anthropicCoach) CoachRecovery(ctx context.Context, in RecoveryCoachingInput) RecoveryCoaching {
  system := `You are the AI Accountability and Clarity Coach for The Game of Becoming. A user has reflected on their failed intention. Your role is to provide encouraging, wisdom-building coaching.

Your coaching should be empathetic, validate their reflection, identify the insight, and connect it to future success. Keep it concise (2-3 sentences max).

Call the RecoveryQuestCoaching tool with your response.`

  user := fmt.Sprintf(`Context:
- User's name: %s
- Original failed intention: %q
- The recovery quest they were asked: %q
- The user's reflection: %q`,
    in.UserName, in.IntentionText, in.RecoveryQuest, in.ResponseText)

  schema := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "ai_coaching_feedback": map[string]any{
        "type":        "string",
        "description": "Encouraging, wisdom-building coaching based on the user's reflection (2-3 sentences max).",
      },
      "resilience_stat_gain": map[string]any{
        "type":        "integer",
        "description": "Set this to 1, as the user gains resilience for reflecting.",
      },
    },
    "required": []string{"ai_coaching_feedback", "resilience_stat_gain"},
  }

  var out RecoveryCoaching
  if err := c.generateStructured(ctx, system, user, "RecoveryQuestCoaching", schema, &out); err != nil {
    c.log.Warn("Recovery coaching failed, serving fallback", "error", err)
    return fallbackRecoveryCoaching()
  }
  if out.ResilienceGain <= 0 {
    out.ResilienceGain = 1
  }
  return out
}
