package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/services"
)

type DailyResultHandler struct {
  dailyResultService services.DailyResultService
}

func NewDailyResultHandler(dailyResultService services.DailyResultService) *DailyResultHandler {
  return &DailyResultHandler{dailyResultService: dailyResultService}
}

func (dh *DailyResultHandler) GetByIntentionID(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  intentionID, pErr := uuid.Parse(c.Param("intentionID"))
  if pErr != nil {
    RespondError(c, apierr.InvalidArgument("invalid intention id"))
    return
  }
  result, err := dh.dailyResultService.GetByIntentionID(c.Request.Context(), userID, intentionID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}

func (dh *DailyResultHandler) RespondToRecoveryQuest(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  resultID, pErr := uuid.Parse(c.Param("resultID"))
  if pErr != nil {
    RespondError(c, apierr.InvalidArgument("invalid result id"))
    return
  }
  var req struct {
    RecoveryQuestResponse string `json:"recovery_quest_response"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  outcome, err := dh.dailyResultService.RespondToRecoveryQuest(c.Request.Context(), userID, resultID, req.RecoveryQuestResponse)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, outcome)
}
