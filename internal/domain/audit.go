package domain

import "time"

// AuditLog records a security relevant action
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryAuth    = "auth"
	AuditCategoryContent = "content"
	AuditCategoryAdmin   = "admin"
)

const (
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"
	AuditActionLogout      = "logout"
	AuditActionSignUp      = "signup"
	AuditActionProfileEdit = "profile_update"

	AuditActionCategoryCreate = "category_create"
	AuditActionCategoryUpdate = "category_update"
	AuditActionCategoryDelete = "category_delete"
	AuditActionLessonCreate   = "lesson_create"
	AuditActionLessonUpdate   = "lesson_update"
	AuditActionLessonDelete   = "lesson_delete"

	AuditActionAdminUpdateUser = "admin_update_user"
	AuditActionAdminDeleteUser = "admin_delete_user"
)
