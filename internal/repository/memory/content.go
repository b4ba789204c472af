package memory

import (
	"context"

	"github.com/salesdojo/backend/internal/domain"
)

type CategoryRepository struct{ d *db }

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.d.categories))
	for id := range r.d.categories {
		out = append(out, r.d.category(id))
	}
	sortByOrder(out, func(c *domain.Category) int { return c.OrderIndex },
		func(c *domain.Category) string { return c.Name })
	return out, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if c := r.d.category(id); c != nil {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *CategoryRepository) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for id, c := range r.d.categories {
		if c.Slug == slug {
			return r.d.category(id), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CategoryRepository) slugTaken(slug, selfID string) bool {
	for id, c := range r.d.categories {
		if id != selfID && c.Slug == slug {
			return true
		}
	}
	return false
}

func (r *CategoryRepository) Create(_ context.Context, c *domain.Category) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.slugTaken(c.Slug, "") {
		return domain.ErrAlreadyExists
	}
	now := r.d.now()
	c.ID = newID()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	r.d.categories[c.ID] = &stored
	return nil
}

func (r *CategoryRepository) Update(_ context.Context, c *domain.Category) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	old, ok := r.d.categories[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.slugTaken(c.Slug, c.ID) {
		return domain.ErrAlreadyExists
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = r.d.now()
	stored := *c
	r.d.categories[c.ID] = &stored
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, l := range r.d.lessons {
		if l.CategoryID != nil && *l.CategoryID == id {
			return domain.ErrConflict
		}
	}
	delete(r.d.categories, id)
	return nil
}

func (r *CategoryRepository) CountLessons(_ context.Context, id string) (int, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	n := 0
	for _, l := range r.d.lessons {
		if l.CategoryID != nil && *l.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type LessonRepository struct{ d *db }

func (r *LessonRepository) List(_ context.Context, f domain.LessonFilter) ([]*domain.Lesson, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []*domain.Lesson
	for id := range r.d.lessons {
		l := r.d.lesson(id)
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		if f.Published != nil && l.IsPublished != *f.Published {
			continue
		}
		if f.CategorySlug != "" && (l.Category == nil || l.Category.Slug != f.CategorySlug) {
			continue
		}
		out = append(out, l)
	}
	sortByOrder(out, func(l *domain.Lesson) int { return l.OrderIndex },
		func(l *domain.Lesson) string { return l.Title })
	return out, nil
}

func (r *LessonRepository) GetByID(_ context.Context, id string) (*domain.Lesson, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	if l := r.d.lesson(id); l != nil {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (r *LessonRepository) checkCategory(l *domain.Lesson) error {
	if l.CategoryID == nil {
		return nil
	}
	if _, ok := r.d.categories[*l.CategoryID]; !ok {
		return domain.ErrConflict
	}
	return nil
}

func (r *LessonRepository) Create(_ context.Context, l *domain.Lesson) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if err := r.checkCategory(l); err != nil {
		return err
	}
	now := r.d.now()
	l.ID = newID()
	l.CreatedAt, l.UpdatedAt = now, now
	stored := *l
	stored.Category = nil
	r.d.lessons[l.ID] = &stored
	return nil
}

func (r *LessonRepository) Update(_ context.Context, l *domain.Lesson) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	old, ok := r.d.lessons[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.checkCategory(l); err != nil {
		return err
	}
	l.CreatedAt = old.CreatedAt
	l.UpdatedAt = r.d.now()
	stored := *l
	stored.Category = nil
	r.d.lessons[l.ID] = &stored
	return nil
}

func (r *LessonRepository) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.lessons[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.d.lessons, id)
	for k, p := range r.d.progress {
		if p.LessonID == id {
			delete(r.d.progress, k)
		}
	}
	return nil
}
