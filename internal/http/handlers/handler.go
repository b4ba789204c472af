package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/service"
)

// CookieConfig controls the session cookie written on sign-in.
type CookieConfig struct {
	Secure bool
	Domain string
}

type Handler struct {
	AuthService     *service.AuthService
	ContentService  *service.ContentService
	ProgressService *service.ProgressService
	AdminService    *service.AdminService
	AuditService    *service.AuditService
	Cookie          CookieConfig
}

func NewHandler(
	auth *service.AuthService,
	content *service.ContentService,
	progress *service.ProgressService,
	admin *service.AdminService,
	audit *service.AuditService,
	cookie CookieConfig,
) *Handler {
	return &Handler{
		AuthService:     auth,
		ContentService:  content,
		ProgressService: progress,
		AdminService:    admin,
		AuditService:    audit,
		Cookie:          cookie,
	}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
