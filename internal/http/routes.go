package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salesdojo/backend/internal/http/handlers"
	"github.com/salesdojo/backend/internal/http/middleware"
)

// Limits configures request rate limiting. Zero values fall back to defaults.
type Limits struct {
	API    int
	Auth   int
	Write  int // per user, progress writes
	Window time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.API <= 0 {
		l.API = 120
	}
	if l.Auth <= 0 {
		l.Auth = 20
	}
	if l.Write <= 0 {
		l.Write = 60
	}
	if l.Window <= 0 {
		l.Window = time.Minute
	}
	return l
}

// Deps is everything the router needs.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Limiter *middleware.RateLimiter
	Limits  Limits
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	limits := d.Limits.withDefaults()
	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiRL := limiter.Limit("api", limits.API, limits.Window, middleware.ByIP)
	authRL := limiter.Limit("auth", limits.Auth, limits.Window, middleware.ByIP)
	writeRL := limiter.Limit("write", limits.Write, limits.Window, middleware.ByUser)
	authn := middleware.Authenticate(d.Handler.AuthService)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL, authn)
	registerAPIRoutes(v1, d.Handler, authRL, writeRL)

	api := r.Group("/api")
	api.Use(apiRL, authn)
	api.GET("/health", d.Health.Health)
	registerAPIRoutes(api, d.Handler, authRL, writeRL)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, authRL, writeRL gin.HandlerFunc) {
	user := middleware.RequireUser()
	admin := middleware.RequireAdmin()

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/telegram", authRL, h.TelegramAuth)
		auth.GET("/telegram", user, h.TelegramVerify)
		auth.POST("/signup", authRL, h.SignUp)
		auth.POST("/signin", authRL, h.SignIn)
		auth.POST("/signout", h.SignOut)
		auth.GET("/me", user, h.Me)
		auth.PUT("/me", user, h.UpdateMe)
	}

	// Content
	api.GET("/categories", h.ListCategories)
	api.POST("/categories", admin, h.CreateCategory)
	api.PUT("/categories/:id", admin, h.UpdateCategory)
	api.DELETE("/categories/:id", admin, h.DeleteCategory)

	api.GET("/lessons", h.ListLessons)
	api.POST("/lessons", admin, h.CreateLesson)
	api.GET("/lessons/:id", h.GetLesson)
	api.PUT("/lessons/:id", admin, h.UpdateLesson)
	api.DELETE("/lessons/:id", admin, h.DeleteLesson)

	// Progress
	api.GET("/progress", user, h.GetProgress)
	api.POST("/progress", user, writeRL, h.SaveProgress)
	api.GET("/progress/stats", user, h.ProgressStats)
	api.GET("/favorites", user, h.ListFavorites)
	api.POST("/favorites", user, writeRL, h.SetFavorite)
	api.GET("/completed", user, h.ListCompleted)
	api.POST("/completed", user, writeRL, h.SetCompleted)

	// Admin
	adm := api.Group("/admin", admin)
	{
		adm.GET("/users", h.ListUsers)
		adm.GET("/users/:id", h.GetUser)
		adm.PUT("/users/:id", h.UpdateUser)
		adm.DELETE("/users/:id", h.DeleteUser)
		adm.GET("/audit", h.AuditLogs)
	}
}
