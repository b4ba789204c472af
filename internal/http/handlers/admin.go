package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/service"
)

func queryInt(c *gin.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return def
}

// ListUsers serves ?page, ?limit, ?role and ?search.
func (h *Handler) ListUsers(c *gin.Context) {
	page, err := h.AdminService.ListUsers(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "limit", 10), c.Query("role"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": page.Users,
		"pagination": gin.H{
			"page":  page.Page,
			"limit": page.Limit,
			"total": page.Total,
			"pages": page.Pages,
		},
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	details, err := h.AdminService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": details})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req service.AdminUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	user, err := h.AdminService.UpdateUser(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.AdminService.DeleteUser(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// AuditLogs lists recent entries, filtered by ?category or ?user_id.
func (h *Handler) AuditLogs(c *gin.Context) {
	ctx := c.Request.Context()
	limit := queryInt(c, "limit", 50)

	var err error
	var logs []*domain.AuditLog
	if userID := c.Query("user_id"); userID != "" {
		logs, err = h.AuditService.GetUserAuditLogs(ctx, userID, limit)
	} else {
		logs, err = h.AuditService.GetRecentLogs(ctx, c.Query("category"), limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
