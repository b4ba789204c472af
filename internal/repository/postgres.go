package repository

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/salesdojo/backend/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresStore wires every repository to db.
func NewPostgresStore(db *pgxpool.Pool) Store {
	return Store{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Lessons:    NewLessonRepository(db),
		Progress:   NewProgressRepository(db),
		Audit:      NewAuditRepository(db),
	}
}

// mapErr translates driver errors into domain errors.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		case pgerrcode.InvalidTextRepresentation:
			// malformed uuid
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
