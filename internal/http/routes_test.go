package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdojo/backend/internal/domain"
	apphttp "github.com/salesdojo/backend/internal/http"
	"github.com/salesdojo/backend/internal/http/handlers"
	"github.com/salesdojo/backend/internal/http/middleware"
	"github.com/salesdojo/backend/internal/repository"
	"github.com/salesdojo/backend/internal/repository/memory"
	"github.com/salesdojo/backend/internal/service"
	"github.com/salesdojo/backend/internal/session"
	"github.com/salesdojo/backend/internal/telegram"
)

const botToken = "12345:TEST"

func init() { gin.SetMode(gin.TestMode) }

type server struct {
	r     *gin.Engine
	store repository.Store
}

func newServer(t *testing.T, botToken string, limits apphttp.Limits) *server {
	t.Helper()
	store := memory.NewSeededStore()
	v := service.NewValidator()
	tokens := session.NewManager("test-secret")
	audit := service.NewAuditService(store.Audit)

	h := handlers.NewHandler(
		service.NewAuthService(store.Users, tokens, memory.NewBlocklist(), audit, v, service.AuthConfig{
			BotToken: botToken, MaxAge: 86400,
		}),
		service.NewContentService(store.Categories, store.Lessons, audit, v),
		service.NewProgressService(store.Progress, store.Lessons, v),
		service.NewAdminService(store.Users, store.Progress, audit, v),
		audit,
		handlers.CookieConfig{},
	)

	if limits.API == 0 {
		limits.API = 10_000
	}
	if limits.Auth == 0 {
		limits.Auth = 10_000
	}
	if limits.Write == 0 {
		limits.Write = 10_000
	}
	r := gin.New()
	apphttp.RegisterRoutes(r, apphttp.Deps{
		Handler: h,
		Health:  handlers.NewHealthHandler("test", nil),
		Limits:  limits,
	})
	return &server{r: r, store: store}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func signedInitData(authDate time.Time, userJSON string) string {
	return telegram.SignInitData(map[string]string{
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
		"user":      userJSON,
	}, botToken)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func (s *server) signUp(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "secret123", "full_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["token"].(string)
}

func (s *server) adminToken(t *testing.T) string {
	t.Helper()
	token := s.signUp(t, "boss@example.com")
	u, err := s.store.Users.GetByEmail(context.Background(), "boss@example.com")
	require.NoError(t, err)
	u.Role = domain.RoleAdmin
	require.NoError(t, s.store.Users.Update(context.Background(), u))
	return token
}

func TestTelegramSignIn(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	raw := signedInitData(time.Now(), `{"id":279058397,"first_name":"Vladislav","username":"vdkfrost","language_code":"ru","is_premium":true}`)

	w := s.do(t, http.MethodPost, "/api/auth/telegram", "", map[string]string{"initData": raw})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(279058397), user["telegram_id"])
	assert.Equal(t, "telegram_279058397@telegram.local", user["email"])
	assert.NotContains(t, user, "password_hash")

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(session.TokenTTL.Seconds()), cookie.MaxAge)
	assert.Equal(t, body["token"], cookie.Value)

	// cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/telegram", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user["id"], decode(t, rec)["user"].(map[string]any)["id"])

	// same telegram account resolves to the same user
	w = s.do(t, http.MethodPost, "/api/v1/auth/telegram", "", map[string]string{"initData": raw})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user["id"], decode(t, w)["user"].(map[string]any)["id"])
}

func TestTelegramSignIn_Rejections(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	valid := signedInitData(time.Now(), `{"id":1,"first_name":"A"}`)

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{"missing", map[string]string{}, http.StatusBadRequest, "initData is required"},
		{"too long", map[string]string{"initData": valid + "&pad=" + string(bytes.Repeat([]byte("a"), 5000))}, http.StatusBadRequest, "initData too long"},
		{"tampered", map[string]string{"initData": valid + "&x=1"}, http.StatusUnauthorized, "authentication failed"},
		{"stale", map[string]string{"initData": signedInitData(time.Now().Add(-48*time.Hour), `{"id":1,"first_name":"A"}`)}, http.StatusUnauthorized, "authentication failed"},
		{"no user", map[string]string{"initData": telegram.SignInitData(map[string]string{"auth_date": strconv.FormatInt(time.Now().Unix(), 10)}, botToken)}, http.StatusUnauthorized, "authentication failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/auth/telegram", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.errMsg, decode(t, w)["error"])
			assert.Nil(t, sessionCookie(w))
		})
	}

	t.Run("not configured", func(t *testing.T) {
		s := newServer(t, "", apphttp.Limits{})
		w := s.do(t, http.MethodPost, "/api/auth/telegram", "", map[string]string{"initData": valid})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPasswordFlowAndSignOut(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	token := s.signUp(t, "new@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "new@example.com", "password": "secret123", "full_name": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "new@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/auth/me", token, map[string]string{"full_name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode(t, w)["user"].(map[string]any)["full_name"])

	w = s.do(t, http.MethodPost, "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token")

	w = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "new@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode(t, w)["token"].(string)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", fresh, nil).Code)
}

func TestAccessControl(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	user := s.signUp(t, "plain@example.com")
	admin := s.adminToken(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/users", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/categories", user, map[string]string{"name": "X"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/progress", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/me", "garbage", nil).Code)

	w := s.do(t, http.MethodGet, "/api/admin/users?limit=2", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["users"], 2)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["limit"])
	assert.Equal(t, float64(4), pagination["total"])

	w = s.do(t, http.MethodGet, "/api/admin/audit?category=auth", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["logs"])
}

func TestContentAndProgress(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	admin := s.adminToken(t)
	user := s.signUp(t, "learner@example.com")

	w := s.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode(t, w)["categories"].([]any)
	require.Len(t, cats, 4)
	needs := cats[0].(map[string]any)
	assert.Equal(t, "needs", needs["slug"])

	w = s.do(t, http.MethodDelete, "/api/categories/"+needs["id"].(string), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/categories", admin, map[string]string{"name": "Холодные звонки"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "холодные-звонки", decode(t, w)["category"].(map[string]any)["slug"])

	w = s.do(t, http.MethodGet, "/api/lessons?category=needs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lessons := decode(t, w)["lessons"].([]any)
	require.Len(t, lessons, 3)
	lessonID := lessons[0].(map[string]any)["id"].(string)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/lessons/"+"00000000-0000-0000-0000-000000000000", "", nil).Code)

	w = s.do(t, http.MethodPost, "/api/progress", user, map[string]any{"lesson_id": lessonID, "status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(100), decode(t, w)["progress"].(map[string]any)["completion_percentage"])

	w = s.do(t, http.MethodPost, "/api/progress", user, map[string]any{"lesson_id": lessonID, "status": "paused"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/favorites", user, map[string]any{"lesson_id": lessonID, "is_favorite": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added to favorites", decode(t, w)["message"])

	w = s.do(t, http.MethodPost, "/api/favorites", user, map[string]any{"lesson_id": lessonID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["favorites"], 1)

	w = s.do(t, http.MethodGet, "/api/progress/stats", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decode(t, w)["stats"].(map[string]any)["overview"].(map[string]any)
	assert.Equal(t, float64(4), overview["total_lessons"])
	assert.Equal(t, float64(1), overview["completed_lessons"])
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{Auth: 2})
	creds := map[string]string{"email": "nobody@example.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/signin", "", creds).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/auth/signin", "", creds).Code)

	// other routes are not on the auth budget
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/categories", "", nil).Code)
}

func TestWriteRateLimit_PerUser(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{Write: 2})
	alice := s.signUp(t, "alice@example.com")
	bob := s.signUp(t, "bob@example.com")

	w := s.do(t, http.MethodGet, "/api/lessons", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lessonID := decode(t, w)["lessons"].([]any)[0].(map[string]any)["id"].(string)
	fav := map[string]any{"lesson_id": lessonID, "is_favorite": true}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/favorites", alice, fav).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/favorites", alice, fav).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodPost, "/api/progress", alice,
		map[string]any{"lesson_id": lessonID, "status": "started"}).Code)

	// same client address, separate budget per user
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/favorites", bob, fav).Code)
	// reads are not on the write budget
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/favorites", alice, nil).Code)
}

func TestSignUp_ValidationMessage(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	w := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "not-an-email", "password": "secret123", "full_name": "Test User",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	msg := decode(t, w)["error"].(string)
	assert.Equal(t, "email must be a valid email address", msg)
	assert.NotContains(t, msg, "SignUpInput")
}

func TestHealth(t *testing.T) {
	s := newServer(t, botToken, apphttp.Limits{})
	for _, path := range []string{"/health", "/healthz", "/readyz", "/api/health"} {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, "", nil).Code, path)
	}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/metrics", "", nil).Code)
}
