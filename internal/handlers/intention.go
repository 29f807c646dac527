package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/services"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type IntentionHandler struct {
  intentionService services.IntentionService
}

func NewIntentionHandler(intentionService services.IntentionService) *IntentionHandler {
  return &IntentionHandler{intentionService: intentionService}
}

type intentionResponse struct {
  *types.DailyIntention
  CompletionPercentage float64 `json:"completion_percentage"`
}

func intentionView(intention *types.DailyIntention) intentionResponse {
  return intentionResponse{
    DailyIntention:       intention,
    CompletionPercentage: intention.CompletionPercentage(),
  }
}

func (ih *IntentionHandler) Create(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req struct {
    IntentionText   string `json:"intention_text"`
    TargetQuantity  int    `json:"target_quantity"`
    FocusBlockCount int    `json:"focus_block_count"`
    IsRefined       bool   `json:"is_refined"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  intention, refinement, err := ih.intentionService.Create(c.Request.Context(), userID, services.CreateIntentionInput{
    IntentionText:   req.IntentionText,
    TargetQuantity:  req.TargetQuantity,
    FocusBlockCount: req.FocusBlockCount,
    IsRefined:       req.IsRefined,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  if refinement != nil {
    // Not persisted: the coach wants a sharper intention first.
    c.JSON(http.StatusOK, gin.H{"needs_refinement": true, "coach_feedback": refinement.Feedback})
    return
  }
  RespondCreated(c, intentionView(intention))
}

func (ih *IntentionHandler) GetToday(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  intention, err := ih.intentionService.GetToday(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, intentionView(intention))
}

func (ih *IntentionHandler) ReportProgress(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req struct {
    CompletedQuantity *int `json:"completed_quantity"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.CompletedQuantity == nil {
    RespondError(c, apierr.InvalidArgument("completed_quantity is required"))
    return
  }
  intention, err := ih.intentionService.ReportProgress(c.Request.Context(), userID, *req.CompletedQuantity)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, intentionView(intention))
}

func (ih *IntentionHandler) Complete(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  result, err := ih.intentionService.Complete(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}

func (ih *IntentionHandler) Fail(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  result, err := ih.intentionService.Fail(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}
