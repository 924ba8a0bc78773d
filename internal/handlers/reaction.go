package handlers

import (
	"net/http"

	"boarddash/internal/middleware"
	"boarddash/internal/services"

	"github.com/gin-gonic/gin"
)

// ReactionHandler serves the like and bookmark toggles.
type ReactionHandler struct {
	reactions *services.ReactionService
}

func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

// ToggleLike 切换点赞状态，返回最新状态和点赞数
func (h *ReactionHandler) ToggleLike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	result, err := h.reactions.ToggleLike(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ToggleBookmark 切换收藏状态
func (h *ReactionHandler) ToggleBookmark(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	result, err := h.reactions.ToggleBookmark(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
