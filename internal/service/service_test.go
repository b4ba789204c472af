package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salesdojo/backend/internal/repository"
	"github.com/salesdojo/backend/internal/repository/memory"
	"github.com/salesdojo/backend/internal/session"
)

const testBotToken = "TEST:TOKEN"

type fixture struct {
	store     repository.Store
	blocklist *memory.Blocklist
	tokens    *session.Manager
	audit     *AuditService
	auth      *AuthService
	content   *ContentService
	progress  *ProgressService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewSeededStore()
	v := NewValidator()
	bl := memory.NewBlocklist()
	tokens := session.NewManager("test-secret")
	audit := NewAuditService(store.Audit)

	return &fixture{
		store:     store,
		blocklist: bl,
		tokens:    tokens,
		audit:     audit,
		auth: NewAuthService(store.Users, tokens, bl, audit, v, AuthConfig{
			BotToken: testBotToken,
			MaxAge:   86400,
			Pepper:   "pepper",
		}),
		content:  NewContentService(store.Categories, store.Lessons, audit, v),
		progress: NewProgressService(store.Progress, store.Lessons, v),
		admin:    NewAdminService(store.Users, store.Progress, audit, v),
	}
}

func (f *fixture) signUp(t *testing.T, email string) *Session {
	t.Helper()
	sess, err := f.auth.SignUp(context.Background(), SignUpInput{
		Email: email, Password: "secret123", FullName: "Test User",
	}, RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	return sess
}
