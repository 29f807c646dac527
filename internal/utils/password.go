package utils

import (
  "fmt"
  "golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
  if password == "" {
    return "", fmt.Errorf("a password is required")
  }
  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("failed to hash password: %w", err)
  }
  return string(hashed), nil
}

func VerifyPassword(hashed, password string) bool {
  return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
