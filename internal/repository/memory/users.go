package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/salesdojo/backend/internal/domain"
)

type UserRepository struct{ d *db }

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	u, ok := r.d.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

// unique checks email and telegram id collisions, ignoring the row selfID.
func (r *UserRepository) unique(u *domain.User, selfID string) error {
	for id, other := range r.d.users {
		if id == selfID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrAlreadyExists
		}
		if u.TelegramID != nil && other.TelegramID != nil && *other.TelegramID == *u.TelegramID {
			return domain.ErrAlreadyExists
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.unique(u, ""); err != nil {
		return err
	}
	now := r.d.now()
	u.ID = newID()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	r.d.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	old, ok := r.d.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.unique(u, u.ID); err != nil {
		return err
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = r.d.now()
	r.d.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.users, id)
	for k, p := range r.d.progress {
		if p.UserID == id {
			delete(r.d.progress, k)
		}
	}
	return nil
}

func (r *UserRepository) List(_ context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []*domain.User
	for _, u := range r.d.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !containsFold(u.FullName, f.Search) && !containsFold(u.Email, f.Search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	start := max(0, min(f.Offset, total))
	end := min(start+limit, total)

	out := make([]*domain.User, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, copyUser(u))
	}
	return out, total, nil
}
