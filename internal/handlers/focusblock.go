package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/xecuteapp/becoming-backend/internal/apierr"
  "github.com/xecuteapp/becoming-backend/internal/services"
  "github.com/xecuteapp/becoming-backend/internal/types"
)

type FocusBlockHandler struct {
  focusBlockService services.FocusBlockService
}

func NewFocusBlockHandler(focusBlockService services.FocusBlockService) *FocusBlockHandler {
  return &FocusBlockHandler{focusBlockService: focusBlockService}
}

func (fh *FocusBlockHandler) Create(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  var req struct {
    Intention       string `json:"intention"`
    DurationMinutes int    `json:"duration_minutes"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  block, err := fh.focusBlockService.Create(c.Request.Context(), userID, services.CreateFocusBlockInput{
    Intention:       req.Intention,
    DurationMinutes: req.DurationMinutes,
  })
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, block)
}

func (fh *FocusBlockHandler) Update(c *gin.Context) {
  userID, ok := currentUserID(c)
  if !ok {
    return
  }
  blockID, pErr := uuid.Parse(c.Param("blockID"))
  if pErr != nil {
    RespondError(c, apierr.InvalidArgument("invalid focus block id"))
    return
  }
  var req struct {
    Status            *string `json:"status"`
    PreBlockVideoURL  *string `json:"pre_block_video_url"`
    PostBlockVideoURL *string `json:"post_block_video_url"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.InvalidArgument("invalid request body"))
    return
  }
  in := services.UpdateFocusBlockInput{
    PreBlockVideoURL:  req.PreBlockVideoURL,
    PostBlockVideoURL: req.PostBlockVideoURL,
  }
  if req.Status != nil {
    status := types.FocusBlockStatus(*req.Status)
    in.Status = &status
  }
  out, err := fh.focusBlockService.Update(c.Request.Context(), userID, blockID, in)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, out)
}
