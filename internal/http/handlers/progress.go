package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/service"
)

type FavoriteRequest struct {
	LessonID   string `json:"lesson_id"`
	IsFavorite *bool  `json:"is_favorite"`
}

type CompletedRequest struct {
	LessonID    string `json:"lesson_id"`
	IsCompleted *bool  `json:"is_completed"`
}

// GetProgress lists the caller's progress, optionally for one ?lesson_id.
func (h *Handler) GetProgress(c *gin.Context) {
	rows, err := h.ProgressService.List(c.Request.Context(), middleware.CurrentUser(c).ID, c.Query("lesson_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": rows})
}

func (h *Handler) SaveProgress(c *gin.Context) {
	var req service.ProgressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	p, err := h.ProgressService.Save(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Progress saved successfully",
		"progress": p,
	})
}

func (h *Handler) ProgressStats(c *gin.Context) {
	stats, err := h.ProgressService.Stats(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	rows, err := h.ProgressService.Favorites(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": rows})
}

func (h *Handler) SetFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LessonID == "" || req.IsFavorite == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
		return
	}
	p, err := h.ProgressService.SetFavorite(c.Request.Context(), middleware.CurrentUser(c).ID, req.LessonID, *req.IsFavorite)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Removed from favorites"
	if *req.IsFavorite {
		msg = "Added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": p, "message": msg})
}

func (h *Handler) ListCompleted(c *gin.Context) {
	rows, err := h.ProgressService.Completed(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": rows})
}

func (h *Handler) SetCompleted(c *gin.Context) {
	var req CompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LessonID == "" || req.IsCompleted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request data"})
		return
	}
	p, err := h.ProgressService.SetCompleted(c.Request.Context(), middleware.CurrentUser(c).ID, req.LessonID, *req.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Lesson marked as incomplete"
	if *req.IsCompleted {
		msg = "Lesson marked as completed"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "progress": p, "message": msg})
}
