package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/session"
)

type stubAuth struct {
	users map[string]*domain.User
	err   error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*domain.User, *session.Claims, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	u, ok := s.users[token]
	if !ok {
		return nil, nil, domain.ErrUnauthorized
	}
	return u, &session.Claims{}, nil
}

func authRouter(auth Authenticator, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(auth))
	r.GET("/x", guard, func(c *gin.Context) {
		id := ""
		if u := CurrentUser(c); u != nil {
			id = u.ID
		}
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	auth := stubAuth{users: map[string]*domain.User{
		"user-token":  {ID: "u1", Role: domain.RoleUser},
		"admin-token": {ID: "a1", Role: domain.RoleAdmin},
	}}

	tests := []struct {
		name   string
		guard  gin.HandlerFunc
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{"anonymous passes", func(c *gin.Context) {}, func(*http.Request) {}, http.StatusOK, ""},
		{"bearer", RequireUser(), func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, http.StatusOK, "u1"},
		{"cookie", RequireUser(), func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: "user-token"}) }, http.StatusOK, "u1"},
		{"bad token is anonymous", RequireUser(), func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
		{"no token", RequireUser(), func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"admin ok", RequireAdmin(), func(r *http.Request) { r.Header.Set("Authorization", "Bearer admin-token") }, http.StatusOK, "a1"},
		{"admin forbidden", RequireAdmin(), func(r *http.Request) { r.Header.Set("Authorization", "Bearer user-token") }, http.StatusForbidden, ""},
		{"admin anonymous", RequireAdmin(), func(*http.Request) {}, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			authRouter(auth, tt.guard).ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	r := authRouter(stubAuth{err: errors.New("db down")}, RequireUser())
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestLoggerScrubsCredentials(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", CookieName+"=secret")
	h.Set("Accept", "application/json")

	out := scrubHeaders(h)
	assert.Equal(t, "[redacted]", out.Get("Authorization"))
	assert.Equal(t, "[redacted]", out.Get("Cookie"))
	assert.Equal(t, "application/json", out.Get("Accept"))
	assert.Equal(t, "Bearer secret", h.Get("Authorization"), "original untouched")
}
