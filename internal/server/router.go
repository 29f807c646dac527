package server

import (
  "strings"
  "time"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/xecuteapp/becoming-backend/internal/handlers"
  "github.com/xecuteapp/becoming-backend/internal/middleware"
)

type RouterConfig struct {
  AllowedOrigins     []string
  AuthHandler        *handlers.AuthHandler
  UserHandler        *handlers.UserHandler
  IntentionHandler   *handlers.IntentionHandler
  FocusBlockHandler  *handlers.FocusBlockHandler
  DailyResultHandler *handlers.DailyResultHandler
  AuthMiddleware     *middleware.AuthMiddleware
  RateLimiter        *middleware.RateLimiter
  TracingEnabled     bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowedOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000", "http://localhost:5173"}
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))
  if cfg.TracingEnabled {
    router.Use(otelgin.Middleware("becoming-backend"))
  }

  limit := func(suffix string, perMinute int) gin.HandlerFunc {
    if cfg.RateLimiter == nil {
      return func(c *gin.Context) { c.Next() }
    }
    return cfg.RateLimiter.Limit(suffix, perMinute, time.Minute)
  }

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/register", limit("register", 5), cfg.AuthHandler.Register)
    api.POST("/login", limit("login", 10), cfg.AuthHandler.Login)
  }

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // User
  protected.GET("/users/me", cfg.UserHandler.GetMe)
  protected.PUT("/users/me", cfg.UserHandler.UpdateMe)
  protected.GET("/users/me/stats", cfg.UserHandler.GetMyStats)
  protected.GET("/users/me/game-state", cfg.UserHandler.GetGameState)
  // Daily intentions
  protected.POST("/intentions", cfg.IntentionHandler.Create)
  protected.GET("/intentions/today/me", cfg.IntentionHandler.GetToday)
  protected.PATCH("/intentions/today/progress", cfg.IntentionHandler.ReportProgress)
  protected.POST("/intentions/today/complete", cfg.IntentionHandler.Complete)
  protected.POST("/intentions/today/fail", cfg.IntentionHandler.Fail)
  // Focus blocks
  protected.POST("/focus-blocks", cfg.FocusBlockHandler.Create)
  protected.PATCH("/focus-blocks/:blockID", cfg.FocusBlockHandler.Update)
  // Daily results
  protected.GET("/daily-results/:intentionID", cfg.DailyResultHandler.GetByIntentionID)
  protected.POST("/daily-results/:resultID/recovery-quest", cfg.DailyResultHandler.RespondToRecoveryQuest)

  return router
}

// SplitOrigins parses a comma-separated origin list from config.
func SplitOrigins(raw string) []string {
  parts := strings.Split(raw, ",")
  origins := make([]string, 0, len(parts))
  for _, p := range parts {
    p = strings.TrimSpace(p)
    if p != "" {
      origins = append(origins, p)
    }
  }
  return origins
}
