package repository

import (
	"context"
	"strings"

	"github.com/salesdojo/backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, full_name, role, avatar_url, preferences, password_hash,
	telegram_id, username, first_name, last_name, language_code, is_premium, photo_url,
	created_at, updated_at`

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.AvatarURL,
		&u.Preferences,
		&u.PasswordHash,
		&u.TelegramID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.LanguageCode,
		&u.IsPremium,
		&u.PhotoURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	return &u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr("user.GetByID", err)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	return u, mapErr("user.GetByEmail", err)
}

func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
	return u, mapErr("user.GetByTelegramID", err)
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, full_name, role, avatar_url, preferences, password_hash,
			telegram_id, username, first_name, last_name, language_code, is_premium, photo_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.FullName, u.Role, u.AvatarURL, u.Preferences, u.PasswordHash,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.LanguageCode, u.IsPremium, u.PhotoURL,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapErr("user.Create", err)
}

func (r *PostgresUserRepository) Update(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`UPDATE users SET
			email = $2, full_name = $3, role = $4, avatar_url = $5, preferences = $6,
			password_hash = $7, telegram_id = $8, username = $9, first_name = $10,
			last_name = $11, language_code = $12, is_premium = $13, photo_url = $14,
			updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		u.ID, u.Email, u.FullName, u.Role, u.AvatarURL, u.Preferences, u.PasswordHash,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.LanguageCode, u.IsPremium, u.PhotoURL,
	).Scan(&u.UpdatedAt)
	return mapErr("user.Update", err)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affected("user.Delete", tag, err)
}

// List returns a page of users and the total number matching f.
func (r *PostgresUserRepository) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, "role = $1")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, "(full_name ILIKE $"+itoa(n)+" OR email ILIKE $"+itoa(n)+")")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("user.List", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users`+cond+
			` ORDER BY created_at DESC LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, 0, mapErr("user.List", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapErr("user.List", err)
		}
		users = append(users, u)
	}
	return users, total, mapErr("user.List", rows.Err())
}
