package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/xecuteapp/becoming-backend/internal/types"
  "github.com/xecuteapp/becoming-backend/internal/utils"
  "github.com/xecuteapp/becoming-backend/internal/logger"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  dsn := utils.PostgresDSN(log)

  serviceLog.Info("Connecting to Postgres...")
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
  }

  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  if err := s.db.AutoMigrate(Entities()...); err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

// Entities lists every persisted model, in FK dependency order. Shared with
// the sqlite-backed test harness.
func Entities() []any {
  return []any{
    &types.User{},
    &types.UserToken{},
    &types.CharacterStats{},
    &types.DailyIntention{},
    &types.FocusBlock{},
    &types.DailyResult{},
    &types.CoachingLog{},
  }
}
