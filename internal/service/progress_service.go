package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/repository"
)

const recentActivityLimit = 10

// ProgressService tracks lesson progress, favorites and completion per user.
type ProgressService struct {
	progress repository.ProgressRepository
	lessons  repository.LessonRepository
	v        *validator.Validate
	now      func() time.Time
}

func NewProgressService(progress repository.ProgressRepository, lessons repository.LessonRepository, v *validator.Validate) *ProgressService {
	return &ProgressService{progress: progress, lessons: lessons, v: v, now: time.Now}
}

type ProgressInput struct {
	LessonID             string `json:"lesson_id" validate:"required,uuid"`
	Status               string `json:"status" validate:"required,oneof=started completed"`
	CompletionPercentage *int   `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
	TimeSpent            *int   `json:"time_spent" validate:"omitempty,min=0"`
}

func (s *ProgressService) List(ctx context.Context, userID, lessonID string) ([]*domain.Progress, error) {
	rows, err := s.progress.List(ctx, userID, lessonID)
	if err != nil {
		return nil, domain.WrapInternal(err, "ListProgress")
	}
	return rows, nil
}

// current returns the stored row or a fresh not_started one.
func (s *ProgressService) current(ctx context.Context, userID, lessonID string) (*domain.Progress, error) {
	p, err := s.progress.Get(ctx, userID, lessonID)
	switch {
	case err == nil:
		return p, nil
	case domain.IsNotFound(err):
		if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewInvalidArgument("unknown lesson")
			}
			return nil, domain.WrapInternal(err, "progress lesson lookup")
		}
		return &domain.Progress{UserID: userID, LessonID: lessonID, Status: domain.StatusNotStarted}, nil
	default:
		return nil, domain.WrapInternal(err, "progress lookup")
	}
}

// Save records progress. Completing without a percentage sets it to 100.
func (s *ProgressService) Save(ctx context.Context, userID string, in ProgressInput) (*domain.Progress, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	p, err := s.current(ctx, userID, in.LessonID)
	if err != nil {
		return nil, err
	}

	p.Status = in.Status
	if in.CompletionPercentage != nil {
		p.CompletionPercentage = *in.CompletionPercentage
	}
	if in.TimeSpent != nil {
		p.TimeSpent = *in.TimeSpent
	}
	if in.Status == domain.StatusCompleted && (in.CompletionPercentage == nil || *in.CompletionPercentage == 0) {
		p.CompletionPercentage = 100
	}

	if err := s.progress.Upsert(ctx, p); err != nil {
		return nil, storeErr(err, "SaveProgress")
	}
	return p, nil
}

// SetFavorite marks or unmarks a lesson as favorite.
func (s *ProgressService) SetFavorite(ctx context.Context, userID, lessonID string, favorite bool) (*domain.Progress, error) {
	if lessonID == "" {
		return nil, domain.NewInvalidArgument("invalid request data")
	}
	p, err := s.current(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	p.IsFavorite = favorite
	if err := s.progress.Upsert(ctx, p); err != nil {
		return nil, storeErr(err, "SetFavorite")
	}
	return p, nil
}

// SetCompleted marks a lesson completed (stamping completed_at) or resets it.
func (s *ProgressService) SetCompleted(ctx context.Context, userID, lessonID string, completed bool) (*domain.Progress, error) {
	if lessonID == "" {
		return nil, domain.NewInvalidArgument("invalid request data")
	}
	p, err := s.current(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	p.IsCompleted = completed
	if completed {
		now := s.now()
		p.Status = domain.StatusCompleted
		p.CompletedAt = &now
	} else {
		p.Status = domain.StatusNotStarted
		p.CompletedAt = nil
	}
	if err := s.progress.Upsert(ctx, p); err != nil {
		return nil, storeErr(err, "SetCompleted")
	}
	return p, nil
}

func (s *ProgressService) Favorites(ctx context.Context, userID string) ([]*domain.Progress, error) {
	return s.filtered(ctx, userID, func(p *domain.Progress) bool { return p.IsFavorite })
}

func (s *ProgressService) Completed(ctx context.Context, userID string) ([]*domain.Progress, error) {
	return s.filtered(ctx, userID, func(p *domain.Progress) bool { return p.IsCompleted })
}

func (s *ProgressService) filtered(ctx context.Context, userID string, keep func(*domain.Progress) bool) ([]*domain.Progress, error) {
	rows, err := s.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Progress, 0, len(rows))
	for _, p := range rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Stats summarizes a user's progress against all published lessons.
func (s *ProgressService) Stats(ctx context.Context, userID string) (*domain.ProgressStats, error) {
	rows, err := s.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	published := true
	lessons, err := s.lessons.List(ctx, domain.LessonFilter{Published: &published})
	if err != nil {
		return nil, domain.WrapInternal(err, "Stats")
	}
	return BuildStats(rows, len(lessons)), nil
}

// BuildStats aggregates rows, which must be ordered newest first.
func BuildStats(rows []*domain.Progress, totalLessons int) *domain.ProgressStats {
	st := &domain.ProgressStats{
		ByCategory:     []domain.BucketStats{},
		ByType:         map[string]domain.BucketStats{},
		RecentActivity: []*domain.Progress{},
	}
	st.Overview.TotalLessons = totalLessons

	catIndex := map[string]int{}
	sumCompletion := 0
	for _, p := range rows {
		switch p.Status {
		case domain.StatusCompleted:
			st.Overview.CompletedLessons++
		case domain.StatusStarted:
			st.Overview.StartedLessons++
		}
		st.Overview.TotalTimeSpent += p.TimeSpent
		sumCompletion += p.CompletionPercentage

		if p.Lesson == nil {
			continue
		}
		if c := p.Lesson.Category; c != nil && c.Slug != "" {
			i, ok := catIndex[c.Slug]
			if !ok {
				i = len(st.ByCategory)
				catIndex[c.Slug] = i
				st.ByCategory = append(st.ByCategory, domain.BucketStats{Name: c.Name, Slug: c.Slug})
			}
			addToBucket(&st.ByCategory[i], p)
		}
		if p.Lesson.Type != "" {
			b := st.ByType[p.Lesson.Type]
			addToBucket(&b, p)
			st.ByType[p.Lesson.Type] = b
		}
	}

	if len(rows) > 0 {
		st.Overview.AverageCompletion = float64(sumCompletion) / float64(len(rows))
	}
	if totalLessons > 0 {
		st.Overview.CompletionRate = float64(st.Overview.CompletedLessons) / float64(totalLessons) * 100
	}
	st.RecentActivity = append(st.RecentActivity, rows[:min(len(rows), recentActivityLimit)]...)
	return st
}

func addToBucket(b *domain.BucketStats, p *domain.Progress) {
	switch p.Status {
	case domain.StatusCompleted:
		b.Completed++
	case domain.StatusStarted:
		b.Started++
	}
	b.TotalTime += p.TimeSpent
}
