package repository

import (
	"context"
	"time"

	"github.com/salesdojo/backend/internal/domain"
)

// UserRepository is the user lookup/upsert surface the auth core depends on.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	CountLessons(ctx context.Context, id string) (int, error)
}

type LessonRepository interface {
	List(ctx context.Context, f domain.LessonFilter) ([]*domain.Lesson, error)
	GetByID(ctx context.Context, id string) (*domain.Lesson, error)
	Create(ctx context.Context, l *domain.Lesson) error
	Update(ctx context.Context, l *domain.Lesson) error
	Delete(ctx context.Context, id string) error
}

// ProgressRepository stores per user lesson state. Rows returned by List
// carry their lesson (and its category) and are ordered by updated_at desc.
type ProgressRepository interface {
	List(ctx context.Context, userID, lessonID string) ([]*domain.Progress, error)
	Get(ctx context.Context, userID, lessonID string) (*domain.Progress, error)
	Upsert(ctx context.Context, p *domain.Progress) error
}

type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// TokenBlocklist remembers revoked session token ids until they expire.
type TokenBlocklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Lessons    LessonRepository
	Progress   ProgressRepository
	Audit      AuditRepository
}
