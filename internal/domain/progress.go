package domain

import "time"

const (
	StatusNotStarted = "not_started"
	StatusStarted    = "started"
	StatusCompleted  = "completed"
)

// Progress is one user's state on one lesson.
type Progress struct {
	ID                   string     `db:"id" json:"id"`
	UserID               string     `db:"user_id" json:"user_id"`
	LessonID             string     `db:"lesson_id" json:"lesson_id"`
	Status               string     `db:"status" json:"status"`
	CompletionPercentage int        `db:"completion_percentage" json:"completion_percentage"`
	TimeSpent            int        `db:"time_spent" json:"time_spent"`
	IsFavorite           bool       `db:"is_favorite" json:"is_favorite"`
	IsCompleted          bool       `db:"is_completed" json:"is_completed"`
	CompletedAt          *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Lesson               *Lesson    `db:"-" json:"lesson,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

type StatsOverview struct {
	TotalLessons      int     `json:"total_lessons"`
	CompletedLessons  int     `json:"completed_lessons"`
	StartedLessons    int     `json:"started_lessons"`
	CompletionRate    float64 `json:"completion_rate"`
	TotalTimeSpent    int     `json:"total_time_spent"`
	AverageCompletion float64 `json:"average_completion"`
}

// BucketStats aggregates progress rows of one category or lesson type.
type BucketStats struct {
	Name      string `json:"name,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Completed int    `json:"completed"`
	Started   int    `json:"started"`
	TotalTime int    `json:"total_time"`
}

type ProgressStats struct {
	Overview       StatsOverview          `json:"overview"`
	ByCategory     []BucketStats          `json:"by_category"`
	ByType         map[string]BucketStats `json:"by_type"`
	RecentActivity []*Progress            `json:"recent_activity"`
}
