package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/service"
	"github.com/salesdojo/backend/internal/session"
)

// initData longer than this is never a real Telegram payload.
const maxInitDataLen = 4096

type TelegramAuthRequest struct {
	InitData string `json:"initData"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, token, int(session.TokenTTL.Seconds()), "/", h.Cookie.Domain, h.Cookie.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", h.Cookie.Domain, h.Cookie.Secure, true)
}

// TelegramAuth signs a Mini App user in from its initData.
func (h *Handler) TelegramAuth(c *gin.Context) {
	var req TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if req.InitData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initData is required"})
		return
	}
	if len(req.InitData) > maxInitDataLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initData too long"})
		return
	}

	sess, err := h.AuthService.SignIn(c.Request.Context(), service.TelegramCredential{InitData: req.InitData}, requestMeta(c))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTelegramDisabled):
		logger.Error("telegram sign-in attempted without a bot token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "telegram authentication not configured"})
		return
	case errors.Is(err, domain.ErrUnauthorized):
		middleware.AuthAttempts.WithLabelValues(service.MethodTelegram, "rejected").Inc()
		logger.Debug("telegram sign-in rejected", "reason", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	default:
		respondError(c, err)
		return
	}

	middleware.AuthAttempts.WithLabelValues(service.MethodTelegram, "ok").Inc()
	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    sess.User,
		"token":   sess.Token,
	})
}

// TelegramVerify reports who the presented session belongs to.
func (h *Handler) TelegramVerify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    middleware.CurrentUser(c),
	})
}

func (h *Handler) SignUp(c *gin.Context) {
	var req service.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	sess, err := h.AuthService.SignUp(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    sess.User,
		"token":   sess.Token,
	})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	cred := service.PasswordCredential{Email: req.Email, Password: req.Password}
	sess, err := h.AuthService.SignIn(c.Request.Context(), cred, requestMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			middleware.AuthAttempts.WithLabelValues(service.MethodPassword, "rejected").Inc()
		}
		respondError(c, err)
		return
	}

	middleware.AuthAttempts.WithLabelValues(service.MethodPassword, "ok").Inc()
	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authentication successful",
		"user":    sess.User,
		"token":   sess.Token,
	})
}

// SignOut revokes the current token, if any, and clears the cookie.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.AuthService.SignOut(c.Request.Context(), middleware.CurrentClaims(c), requestMeta(c)); err != nil {
		respondError(c, err)
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	user, err := h.AuthService.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}
