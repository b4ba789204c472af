package domain

import "time"

const (
	LessonTypeSprint  = "sprint"
	LessonTypeArchive = "archive"
)

type Category struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Slug                 string    `db:"slug" json:"slug"`
	Description          string    `db:"description" json:"description"`
	Icon                 string    `db:"icon" json:"icon"`
	OrderIndex           int       `db:"order_index" json:"order_index"`
	LessonCount          int       `db:"-" json:"lesson_count"`
	PublishedLessonCount int       `db:"-" json:"published_lesson_count"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

type Lesson struct {
	ID          string    `db:"id" json:"id"`
	CategoryID  *string   `db:"category_id" json:"category_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Content     string    `db:"content" json:"content"`
	Type        string    `db:"type" json:"type"`
	Icon        string    `db:"icon" json:"icon"`
	Duration    int       `db:"duration" json:"duration"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	Category    *Category `db:"-" json:"category,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LessonFilter narrows lesson listings. Published nil means any.
type LessonFilter struct {
	CategorySlug string
	Type         string
	Published    *bool
}
