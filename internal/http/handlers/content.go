package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/service"
)

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.ContentService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	cat, err := h.ContentService.CreateCategory(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	cat, err := h.ContentService.UpdateCategory(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.ContentService.DeleteCategory(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ListLessons filters by ?category=<slug>&type=<sprint|archive>. Drafts
// (?published=false) are listed for admins only.
func (h *Handler) ListLessons(c *gin.Context) {
	f := domain.LessonFilter{
		CategorySlug: c.Query("category"),
		Type:         c.Query("type"),
	}
	if c.Query("published") == "false" {
		if u := middleware.CurrentUser(c); u != nil && u.IsAdmin() {
			drafts := false
			f.Published = &drafts
		}
	}

	lessons, err := h.ContentService.ListLessons(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *Handler) GetLesson(c *gin.Context) {
	lesson, err := h.ContentService.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

func (h *Handler) CreateLesson(c *gin.Context) {
	var req service.LessonInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	lesson, err := h.ContentService.CreateLesson(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

func (h *Handler) UpdateLesson(c *gin.Context) {
	var req service.LessonInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	lesson, err := h.ContentService.UpdateLesson(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

func (h *Handler) DeleteLesson(c *gin.Context) {
	if err := h.ContentService.DeleteLesson(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}
