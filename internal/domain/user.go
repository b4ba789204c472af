package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the canonical account. Telegram and password sign-ins both resolve to it.
type User struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	FullName     string         `db:"full_name" json:"full_name"`
	Role         string         `db:"role" json:"role"`
	AvatarURL    string         `db:"avatar_url" json:"avatar_url,omitempty"`
	Preferences  map[string]any `db:"preferences" json:"preferences"`
	PasswordHash string         `db:"password_hash" json:"-"`

	TelegramID   *int64 `db:"telegram_id" json:"telegram_id,omitempty"`
	Username     string `db:"username" json:"username,omitempty"`
	FirstName    string `db:"first_name" json:"first_name,omitempty"`
	LastName     string `db:"last_name" json:"last_name,omitempty"`
	LanguageCode string `db:"language_code" json:"language_code,omitempty"`
	IsPremium    bool   `db:"is_premium" json:"is_premium"`
	PhotoURL     string `db:"photo_url" json:"photo_url,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   string
	Search string
	Limit  int
	Offset int
}

// ProfileUpdate carries optional profile changes. Nil fields are left as is.
type ProfileUpdate struct {
	FullName    *string
	AvatarURL   *string
	Role        *string
	Preferences map[string]any
}
