package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

// RespondError maps the service error to its HTTP status. Anything that is
// not an *apierr.Error surfaces as a generic 500 without leaking internals.
func RespondError(c *gin.Context, err error) {
  status, code := apierr.StatusOf(err)
  msg := "internal server error"
  if status != http.StatusInternalServerError && err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
