package memory

import (
	"context"
	"sort"

	"github.com/salesdojo/backend/internal/domain"
)

type ProgressRepository struct{ d *db }

func (r *ProgressRepository) List(_ context.Context, userID, lessonID string) ([]*domain.Progress, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []*domain.Progress
	for _, p := range r.d.progress {
		if p.UserID != userID || (lessonID != "" && p.LessonID != lessonID) {
			continue
		}
		out = append(out, r.d.progressRow(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *ProgressRepository) Get(_ context.Context, userID, lessonID string) (*domain.Progress, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	p, ok := r.d.progress[progressKey(userID, lessonID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.d.progressRow(p), nil
}

func (r *ProgressRepository) Upsert(_ context.Context, p *domain.Progress) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.users[p.UserID]; !ok {
		return domain.ErrConflict
	}
	if _, ok := r.d.lessons[p.LessonID]; !ok {
		return domain.ErrConflict
	}

	now := r.d.now()
	key := progressKey(p.UserID, p.LessonID)
	if old, ok := r.d.progress[key]; ok {
		p.ID, p.CreatedAt = old.ID, old.CreatedAt
	} else {
		p.ID, p.CreatedAt = newID(), now
	}
	p.UpdatedAt = now

	stored := *p
	stored.Lesson = nil
	r.d.progress[key] = &stored
	return nil
}

type AuditRepository struct{ d *db }

func (r *AuditRepository) Create(_ context.Context, log *domain.AuditLog) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.auditSeq++
	log.ID = r.d.auditSeq
	log.CreatedAt = r.d.now()
	stored := *log
	r.d.audit = append(r.d.audit, &stored)
	return nil
}

func (r *AuditRepository) List(_ context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return r.filter(func(l *domain.AuditLog) bool { return category == "" || l.Category == category }, limit), nil
}

func (r *AuditRepository) ListByUser(_ context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return r.filter(func(l *domain.AuditLog) bool { return l.UserID == userID }, limit), nil
}

// filter walks newest first.
func (r *AuditRepository) filter(keep func(*domain.AuditLog) bool, limit int) []*domain.AuditLog {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var out []*domain.AuditLog
	for i := len(r.d.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if keep(r.d.audit[i]) {
			l := *r.d.audit[i]
			out = append(out, &l)
		}
	}
	return out
}
