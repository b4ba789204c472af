package repository

import (
	"context"

	"github.com/salesdojo/backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.icon, c.order_index, c.created_at, c.updated_at,
		count(l.id), count(l.id) FILTER (WHERE l.is_published)
	FROM categories c
	LEFT JOIN lessons l ON l.category_id = c.id`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.OrderIndex,
		&c.CreatedAt, &c.UpdatedAt, &c.LessonCount, &c.PublishedLessonCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, categorySelect+` GROUP BY c.id ORDER BY c.order_index, c.name`)
	if err != nil {
		return nil, mapErr("category.List", err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapErr("category.List", err)
		}
		out = append(out, c)
	}
	return out, mapErr("category.List", rows.Err())
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE c.id = $1 GROUP BY c.id`, id))
	return c, mapErr("category.GetByID", err)
}

func (r *PostgresCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE c.slug = $1 GROUP BY c.id`, slug))
	return c, mapErr("category.GetBySlug", err)
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, slug, description, icon, order_index)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.Icon, c.OrderIndex,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr("category.Create", err)
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`UPDATE categories
		 SET name = $2, slug = $3, description = $4, icon = $5, order_index = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		c.ID, c.Name, c.Slug, c.Description, c.Icon, c.OrderIndex,
	).Scan(&c.UpdatedAt)
	return mapErr("category.Update", err)
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return affected("category.Delete", tag, err)
}

func (r *PostgresCategoryRepository) CountLessons(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM lessons WHERE category_id = $1`, id).Scan(&n)
	return n, mapErr("category.CountLessons", err)
}
