package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/repository"
)

const (
	defaultCategoryIcon = "globe.svg"
	defaultLessonIcon   = "demo"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-zа-яё0-9\s]`)
	slugSpaces = regexp.MustCompile(`\s+`)
)

// Slugify lowercases name, drops everything but latin, cyrillic, digits and
// spaces, then joins words with '-'.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "")
	return slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
}

// ContentService manages categories and lessons.
type ContentService struct {
	categories repository.CategoryRepository
	lessons    repository.LessonRepository
	audit      *AuditService
	v          *validator.Validate
}

func NewContentService(
	categories repository.CategoryRepository,
	lessons repository.LessonRepository,
	audit *AuditService,
	v *validator.Validate,
) *ContentService {
	return &ContentService{categories: categories, lessons: lessons, audit: audit, v: v}
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	OrderIndex  int    `json:"order_index"`
}

type LessonInput struct {
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Content     string  `json:"content" validate:"required"`
	Type        string  `json:"type" validate:"omitempty,oneof=sprint archive"`
	Icon        string  `json:"icon"`
	Duration    int     `json:"duration" validate:"gte=0"`
	OrderIndex  int     `json:"order_index"`
	IsPublished *bool   `json:"is_published"`
}

func (s *ContentService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, domain.WrapInternal(err, "ListCategories")
	}
	return cats, nil
}

func (s *ContentService) CreateCategory(ctx context.Context, actorID string, in CategoryInput) (*domain.Category, error) {
	c, err := s.buildCategory(in)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, storeErr(err, "CreateCategory")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionCategoryCreate, domain.AuditCategoryContent, c.ID, nil)
	return c, nil
}

func (s *ContentService) UpdateCategory(ctx context.Context, actorID, id string, in CategoryInput) (*domain.Category, error) {
	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "UpdateCategory")
	}
	c, err := s.buildCategory(in)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, storeErr(err, "UpdateCategory")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionCategoryUpdate, domain.AuditCategoryContent, c.ID, nil)
	return s.categories.GetByID(ctx, c.ID)
}

func (s *ContentService) buildCategory(in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.v.Struct(in); err != nil {
		return nil, domain.NewInvalidArgument("missing required field: name")
	}
	slug := Slugify(in.Name)
	if slug == "" {
		return nil, domain.NewInvalidArgument("name must contain letters or digits")
	}
	icon := in.Icon
	if icon == "" {
		icon = defaultCategoryIcon
	}
	return &domain.Category{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Icon:        icon,
		OrderIndex:  in.OrderIndex,
	}, nil
}

// DeleteCategory refuses while any lesson still references the category.
func (s *ContentService) DeleteCategory(ctx context.Context, actorID, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return storeErr(err, "DeleteCategory")
	}
	n, err := s.categories.CountLessons(ctx, id)
	if err != nil {
		return domain.WrapInternal(err, "DeleteCategory")
	}
	if n > 0 {
		return domain.NewConflict("cannot delete category with existing lessons")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return storeErr(err, "DeleteCategory")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionCategoryDelete, domain.AuditCategoryContent, id, nil)
	return nil
}

// ListLessons returns lessons matching f. A nil Published means published only.
func (s *ContentService) ListLessons(ctx context.Context, f domain.LessonFilter) ([]*domain.Lesson, error) {
	if f.Published == nil {
		published := true
		f.Published = &published
	}
	lessons, err := s.lessons.List(ctx, f)
	if err != nil {
		return nil, domain.WrapInternal(err, "ListLessons")
	}
	return lessons, nil
}

// GetLesson returns a published lesson; unpublished ones are not found.
func (s *ContentService) GetLesson(ctx context.Context, id string) (*domain.Lesson, error) {
	l, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "GetLesson")
	}
	if !l.IsPublished {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

func (s *ContentService) CreateLesson(ctx context.Context, actorID string, in LessonInput) (*domain.Lesson, error) {
	l, err := s.buildLesson(in)
	if err != nil {
		return nil, err
	}
	if err := s.lessons.Create(ctx, l); err != nil {
		return nil, storeErr(err, "CreateLesson")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionLessonCreate, domain.AuditCategoryContent, l.ID, nil)
	return s.lessons.GetByID(ctx, l.ID)
}

func (s *ContentService) UpdateLesson(ctx context.Context, actorID, id string, in LessonInput) (*domain.Lesson, error) {
	existing, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "UpdateLesson")
	}
	l, err := s.buildLesson(in)
	if err != nil {
		return nil, err
	}
	l.ID = existing.ID
	if in.IsPublished == nil {
		l.IsPublished = existing.IsPublished
	}
	if err := s.lessons.Update(ctx, l); err != nil {
		return nil, storeErr(err, "UpdateLesson")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionLessonUpdate, domain.AuditCategoryContent, l.ID, nil)
	return s.lessons.GetByID(ctx, l.ID)
}

func (s *ContentService) DeleteLesson(ctx context.Context, actorID, id string) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		return storeErr(err, "DeleteLesson")
	}
	s.audit.LogAdminAction(ctx, actorID, domain.AuditActionLessonDelete, domain.AuditCategoryContent, id, nil)
	return nil
}

func (s *ContentService) buildLesson(in LessonInput) (*domain.Lesson, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, domain.NewInvalidArgument("missing required fields: title, description, content")
	}
	l := &domain.Lesson{
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Type:        in.Type,
		Icon:        in.Icon,
		Duration:    in.Duration,
		OrderIndex:  in.OrderIndex,
		IsPublished: true,
	}
	if l.Type == "" {
		l.Type = domain.LessonTypeSprint
	}
	if l.Icon == "" {
		l.Icon = defaultLessonIcon
	}
	if in.IsPublished != nil {
		l.IsPublished = *in.IsPublished
	}
	return l, nil
}

// storeErr passes domain errors through and wraps the rest as internal.
func storeErr(err error, op string) error {
	for _, known := range []error{domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrConflict, domain.ErrInvalidArgument} {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.WrapInternal(err, op)
}
