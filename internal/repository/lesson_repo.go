package repository

import (
	"context"
	"strings"

	"github.com/salesdojo/backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresLessonRepository struct {
	db *pgxpool.Pool
}

func NewLessonRepository(db *pgxpool.Pool) *PostgresLessonRepository {
	return &PostgresLessonRepository{db: db}
}

const lessonSelect = `
	SELECT l.id, l.category_id, l.title, l.description, l.content, l.type, l.icon,
		l.duration, l.order_index, l.is_published, l.created_at, l.updated_at,
		c.id, c.name, c.slug, c.description, c.icon, c.order_index
	FROM lessons l
	LEFT JOIN categories c ON c.id = l.category_id`

func scanLesson(row pgx.Row) (*domain.Lesson, error) {
	var (
		l                        domain.Lesson
		cID, cName, cSlug, cDesc *string
		cIcon                    *string
		cOrder                   *int
	)
	err := row.Scan(&l.ID, &l.CategoryID, &l.Title, &l.Description, &l.Content, &l.Type, &l.Icon,
		&l.Duration, &l.OrderIndex, &l.IsPublished, &l.CreatedAt, &l.UpdatedAt,
		&cID, &cName, &cSlug, &cDesc, &cIcon, &cOrder)
	if err != nil {
		return nil, err
	}
	if cID != nil {
		l.Category = &domain.Category{
			ID:          *cID,
			Name:        deref(cName),
			Slug:        deref(cSlug),
			Description: deref(cDesc),
			Icon:        deref(cIcon),
		}
		if cOrder != nil {
			l.Category.OrderIndex = *cOrder
		}
	}
	return &l, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PostgresLessonRepository) List(ctx context.Context, f domain.LessonFilter) ([]*domain.Lesson, error) {
	var (
		where []string
		args  []any
	)
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, "c.slug = $"+itoa(len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, "l.type = $"+itoa(len(args)))
	}
	if f.Published != nil {
		args = append(args, *f.Published)
		where = append(where, "l.is_published = $"+itoa(len(args)))
	}
	q := lessonSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY l.order_index, l.created_at"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr("lesson.List", err)
	}
	defer rows.Close()

	var out []*domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, mapErr("lesson.List", err)
		}
		out = append(out, l)
	}
	return out, mapErr("lesson.List", rows.Err())
}

func (r *PostgresLessonRepository) GetByID(ctx context.Context, id string) (*domain.Lesson, error) {
	l, err := scanLesson(r.db.QueryRow(ctx, lessonSelect+` WHERE l.id = $1`, id))
	return l, mapErr("lesson.GetByID", err)
}

func (r *PostgresLessonRepository) Create(ctx context.Context, l *domain.Lesson) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO lessons (category_id, title, description, content, type, icon, duration, order_index, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		l.CategoryID, l.Title, l.Description, l.Content, l.Type, l.Icon, l.Duration, l.OrderIndex, l.IsPublished,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return mapErr("lesson.Create", err)
}

func (r *PostgresLessonRepository) Update(ctx context.Context, l *domain.Lesson) error {
	err := r.db.QueryRow(ctx,
		`UPDATE lessons
		 SET category_id = $2, title = $3, description = $4, content = $5, type = $6, icon = $7,
			duration = $8, order_index = $9, is_published = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		l.ID, l.CategoryID, l.Title, l.Description, l.Content, l.Type, l.Icon,
		l.Duration, l.OrderIndex, l.IsPublished,
	).Scan(&l.UpdatedAt)
	return mapErr("lesson.Update", err)
}

func (r *PostgresLessonRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return affected("lesson.Delete", tag, err)
}
