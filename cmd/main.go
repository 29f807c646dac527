package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/xecuteapp/becoming-backend/internal/db"
  "github.com/xecuteapp/becoming-backend/internal/handlers"
  "github.com/xecuteapp/becoming-backend/internal/logger"
  "github.com/xecuteapp/becoming-backend/internal/middleware"
  "github.com/xecuteapp/becoming-backend/internal/observability"
  "github.com/xecuteapp/becoming-backend/internal/repos"
  "github.com/xecuteapp/becoming-backend/internal/server"
  "github.com/xecuteapp/becoming-backend/internal/services"
  "github.com/xecuteapp/becoming-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour, log)
  refreshTokenTTL := utils.GetEnvAsDuration("REFRESH_TOKEN_TTL", 24*time.Hour, log)
  corsOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log)

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "becoming-backend",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if shutdownOTel != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = shutdownOTel(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Redis (optional, used by the public-endpoint rate limiter)
  var redisClient *redis.Client
  if addr := os.Getenv("REDIS_ADDR"); addr != "" {
    redisClient = redis.NewClient(&redis.Options{
      Addr:     addr,
      Password: os.Getenv("REDIS_PASSWORD"),
    })
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  characterStatsRepo := repos.NewCharacterStatsRepo(thePG, log)
  dailyIntentionRepo := repos.NewDailyIntentionRepo(thePG, log)
  focusBlockRepo := repos.NewFocusBlockRepo(thePG, log)
  dailyResultRepo := repos.NewDailyResultRepo(thePG, log)
  coachingLogRepo := repos.NewCoachingLogRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  coach := services.NewLoggingCoach(services.NewCoachFromEnv(log), thePG, log, coachingLogRepo)
  authService := services.NewAuthService(thePG, log, userRepo, characterStatsRepo, userTokenRepo,
    jwtSecretKey, accessTokenTTL, refreshTokenTTL)
  userService := services.NewUserService(thePG, log, userRepo, characterStatsRepo, dailyIntentionRepo)
  intentionService := services.NewIntentionService(thePG, log, userRepo, characterStatsRepo, dailyIntentionRepo, dailyResultRepo, coach)
  focusBlockService := services.NewFocusBlockService(thePG, log, userRepo, characterStatsRepo, dailyIntentionRepo, focusBlockRepo)
  dailyResultService := services.NewDailyResultService(thePG, log, userRepo, characterStatsRepo, dailyResultRepo, coach)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  intentionHandler := handlers.NewIntentionHandler(intentionService)
  focusBlockHandler := handlers.NewFocusBlockHandler(focusBlockService)
  dailyResultHandler := handlers.NewDailyResultHandler(dailyResultService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  var rateLimiter *middleware.RateLimiter
  if redisClient != nil {
    rateLimiter = middleware.NewRateLimiter(log, redisClient)
  }

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AllowedOrigins:     server.SplitOrigins(corsOrigins),
    AuthHandler:        authHandler,
    UserHandler:        userHandler,
    IntentionHandler:   intentionHandler,
    FocusBlockHandler:  focusBlockHandler,
    DailyResultHandler: dailyResultHandler,
    AuthMiddleware:     authMiddleware,
    RateLimiter:        rateLimiter,
    TracingEnabled:     shutdownOTel != nil,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
