package repository

import (
	"context"

	"github.com/salesdojo/backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresProgressRepository struct {
	db *pgxpool.Pool
}

func NewProgressRepository(db *pgxpool.Pool) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

const progressSelect = `
	SELECT p.id, p.user_id, p.lesson_id, p.status, p.completion_percentage, p.time_spent,
		p.is_favorite, p.is_completed, p.completed_at, p.created_at, p.updated_at,
		l.id, l.category_id, l.title, l.description, l.content, l.type, l.icon,
		l.duration, l.order_index, l.is_published, l.created_at, l.updated_at,
		c.id, c.name, c.slug, c.description, c.icon, c.order_index
	FROM user_progress p
	JOIN lessons l ON l.id = p.lesson_id
	LEFT JOIN categories c ON c.id = l.category_id`

func scanProgress(row pgx.Row) (*domain.Progress, error) {
	var (
		p                        domain.Progress
		l                        domain.Lesson
		cID, cName, cSlug, cDesc *string
		cIcon                    *string
		cOrder                   *int
	)
	err := row.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Status, &p.CompletionPercentage, &p.TimeSpent,
		&p.IsFavorite, &p.IsCompleted, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
		&l.ID, &l.CategoryID, &l.Title, &l.Description, &l.Content, &l.Type, &l.Icon,
		&l.Duration, &l.OrderIndex, &l.IsPublished, &l.CreatedAt, &l.UpdatedAt,
		&cID, &cName, &cSlug, &cDesc, &cIcon, &cOrder)
	if err != nil {
		return nil, err
	}
	if cID != nil {
		l.Category = &domain.Category{ID: *cID, Name: deref(cName), Slug: deref(cSlug),
			Description: deref(cDesc), Icon: deref(cIcon)}
		if cOrder != nil {
			l.Category.OrderIndex = *cOrder
		}
	}
	p.Lesson = &l
	return &p, nil
}

func (r *PostgresProgressRepository) List(ctx context.Context, userID, lessonID string) ([]*domain.Progress, error) {
	q := progressSelect + ` WHERE p.user_id = $1`
	args := []any{userID}
	if lessonID != "" {
		q += ` AND p.lesson_id = $2`
		args = append(args, lessonID)
	}
	q += ` ORDER BY p.updated_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr("progress.List", err)
	}
	defer rows.Close()

	var out []*domain.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, mapErr("progress.List", err)
		}
		out = append(out, p)
	}
	return out, mapErr("progress.List", rows.Err())
}

func (r *PostgresProgressRepository) Get(ctx context.Context, userID, lessonID string) (*domain.Progress, error) {
	p, err := scanProgress(r.db.QueryRow(ctx,
		progressSelect+` WHERE p.user_id = $1 AND p.lesson_id = $2`, userID, lessonID))
	return p, mapErr("progress.Get", err)
}

// Upsert writes p keyed by (user_id, lesson_id).
func (r *PostgresProgressRepository) Upsert(ctx context.Context, p *domain.Progress) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO user_progress (user_id, lesson_id, status, completion_percentage, time_spent,
			is_favorite, is_completed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			status = EXCLUDED.status,
			completion_percentage = EXCLUDED.completion_percentage,
			time_spent = EXCLUDED.time_spent,
			is_favorite = EXCLUDED.is_favorite,
			is_completed = EXCLUDED.is_completed,
			completed_at = EXCLUDED.completed_at,
			updated_at = now()
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.LessonID, p.Status, p.CompletionPercentage, p.TimeSpent,
		p.IsFavorite, p.IsCompleted, p.CompletedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapErr("progress.Upsert", err)
}
