// Package memory is an in-process implementation of the repository
// interfaces. It backs local development and tests that must not depend on
// PostgreSQL.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/repository"
)

type db struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]*domain.User
	categories map[string]*domain.Category
	lessons    map[string]*domain.Lesson
	progress   map[string]*domain.Progress // key: user_id/lesson_id
	audit      []*domain.AuditLog
	auditSeq   int64
}

// NewStore returns an empty store.
func NewStore() repository.Store {
	return newStore(newDB(time.Now))
}

// NewSeededStore returns a store preloaded with demo content.
func NewSeededStore() repository.Store {
	d := newDB(time.Now)
	d.seed()
	return newStore(d)
}

func newDB(now func() time.Time) *db {
	return &db{
		now:        now,
		users:      map[string]*domain.User{},
		categories: map[string]*domain.Category{},
		lessons:    map[string]*domain.Lesson{},
		progress:   map[string]*domain.Progress{},
	}
}

func newStore(d *db) repository.Store {
	return repository.Store{
		Users:      &UserRepository{d},
		Categories: &CategoryRepository{d},
		Lessons:    &LessonRepository{d},
		Progress:   &ProgressRepository{d},
		Audit:      &AuditRepository{d},
	}
}

func newID() string { return uuid.NewString() }

func progressKey(userID, lessonID string) string { return userID + "/" + lessonID }

// Copies keep callers from mutating stored rows.

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Preferences = make(map[string]any, len(u.Preferences))
	for k, v := range u.Preferences {
		c.Preferences[k] = v
	}
	if u.TelegramID != nil {
		id := *u.TelegramID
		c.TelegramID = &id
	}
	return &c
}

func (d *db) category(id string) *domain.Category {
	c, ok := d.categories[id]
	if !ok {
		return nil
	}
	out := *c
	out.LessonCount, out.PublishedLessonCount = 0, 0
	for _, l := range d.lessons {
		if l.CategoryID != nil && *l.CategoryID == id {
			out.LessonCount++
			if l.IsPublished {
				out.PublishedLessonCount++
			}
		}
	}
	return &out
}

func (d *db) lesson(id string) *domain.Lesson {
	l, ok := d.lessons[id]
	if !ok {
		return nil
	}
	out := *l
	out.Category = nil
	if l.CategoryID != nil {
		if c, ok := d.categories[*l.CategoryID]; ok {
			cc := *c
			out.Category = &cc
		}
	}
	return &out
}

func (d *db) progressRow(p *domain.Progress) *domain.Progress {
	out := *p
	out.Lesson = d.lesson(p.LessonID)
	return &out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortByOrder[T any](items []T, order func(T) int, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := order(items[i]), order(items[j])
		if oi != oj {
			return oi < oj
		}
		return name(items[i]) < name(items[j])
	})
}
