package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/requestdata"
  "github.com/xecuteapp/becoming-backend/internal/services"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Name     string `json:"name"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  user, err := ah.authService.RegisterUser(c.Request.Context(), services.RegisterInput{
    Email:    req.Email,
    Password: req.Password,
    Name:     req.Name,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, user)
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  var req struct {
    RefreshToken string `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
    RespondError(c, apierr.InvalidArgument("refresh_token is required"))
    return
  }
  ctx := c.Request.Context()
  if rd := requestdata.GetRequestData(ctx); rd != nil {
    rd.RefreshToken = req.RefreshToken
    ctx = requestdata.WithRequestData(ctx, rd)
  }
  accessToken, refreshToken, err := ah.authService.RefreshUser(ctx)
  if err != nil {
    RespondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
