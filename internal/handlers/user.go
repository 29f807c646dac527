package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/requestdata"
  "github.com/xecuteapp/becoming-backend/internal/services"
)

type UserHandler struct {
  userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, apierr.Unauthorized("not authenticated"))
    return uuid.Nil, false
  }
  return rd.UserID, true
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  user, err := uh.userService.GetMe(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req struct {
    HighestLeverageActivity string `json:"highest_leverage_activity"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  user, err := uh.userService.UpdateGoal(c.Request.Context(), userID, req.HighestLeverageActivity)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) GetMyStats(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  stats, err := uh.userService.GetStats(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, stats)
}

func (uh *UserHandler) GetGameState(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  state, err := uh.userService.GetGameState(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, state)
}
