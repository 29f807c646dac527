package utils

import (
  "fmt"
  "os"
  "strconv"
  "time"

  "github.com/xecuteapp/becoming-backend/internal/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
  val, ok := os.LookupEnv(key)
  if !ok {
    logEnvDefault(log, key, defaultVal)
    return defaultVal
  }
  logEnvFound(log, key, val)
  return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
  valStr, ok := os.LookupEnv(key)
  if !ok {
    logEnvDefault(log, key, defaultVal)
    return defaultVal
  }
  i, err := strconv.Atoi(valStr)
  if err != nil {
    logEnvUnparseable(log, key, valStr, defaultVal, err)
    return defaultVal
  }
  logEnvFound(log, key, i)
  return i
}

// GetEnvAsDuration accepts either a bare number of seconds ("3600") or a Go
// duration string ("1h30m").
func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
  valStr, ok := os.LookupEnv(key)
  if !ok {
    logEnvDefault(log, key, defaultVal)
    return defaultVal
  }
  if secs, err := strconv.Atoi(valStr); err == nil {
    d := time.Duration(secs) * time.Second
    logEnvFound(log, key, d)
    return d
  }
  d, err := time.ParseDuration(valStr)
  if err != nil {
    logEnvUnparseable(log, key, valStr, defaultVal, err)
    return defaultVal
  }
  logEnvFound(log, key, d)
  return d
}

// PostgresDSN assembles the connection string from the POSTGRES_* variables.
func PostgresDSN(log *logger.Logger) string {
  host := GetEnv("POSTGRES_HOST", "localhost", log)
  port := GetEnv("POSTGRES_PORT", "5432", log)
  user := GetEnv("POSTGRES_USER", "postgres", log)
  password := GetEnv("POSTGRES_PASSWORD", "", log)
  name := GetEnv("POSTGRES_NAME", "becoming", log)
  sslMode := GetEnv("POSTGRES_SSLMODE", "disable", log)
  return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslMode)
}

func logEnvDefault(log *logger.Logger, key string, defaultVal any) {
  if log != nil {
    log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
  }
}

func logEnvFound(log *logger.Logger, key string, val any) {
  if log != nil {
    log.Debug("Environment variable found, using environment", "env_var", key, "value", val)
  }
}

func logEnvUnparseable(log *logger.Logger, key, raw string, defaultVal any, err error) {
  if log != nil {
    log.Debug("Environment variable could not be parsed, using default", "env_var", key, "providedVal", raw, "defaultVal", defaultVal, "error", err)
  }
}
