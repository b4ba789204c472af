package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/repository"
)

// AdminService provides user management for administrators
type AdminService struct {
	users    repository.UserRepository
	progress repository.ProgressRepository
	audit    *AuditService
	v        *validator.Validate
}

func NewAdminService(users repository.UserRepository, progress repository.ProgressRepository, audit *AuditService, v *validator.Validate) *AdminService {
	return &AdminService{users: users, progress: progress, audit: audit, v: v}
}

type UserPage struct {
	Users []*domain.User `json:"users"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
	Pages int            `json:"pages"`
}

type UserDetails struct {
	*domain.User
	Progress []*domain.Progress `json:"user_progress"`
}

type AdminUserInput struct {
	FullName    *string        `json:"full_name" validate:"omitempty,min=2"`
	Role        *string        `json:"role" validate:"omitempty,oneof=user admin"`
	AvatarURL   *string        `json:"avatar_url" validate:"omitempty,url"`
	Preferences map[string]any `json:"preferences"`
}

// ListUsers returns one page of users, newest first. page starts at 1.
func (s *AdminService) ListUsers(ctx context.Context, page, limit int, role, search string) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	limit = min(limit, 100)
	// keeps the offset within a postgres-friendly int32
	page = min(page, math.MaxInt32/limit)

	users, total, err := s.users.List(ctx, domain.UserFilter{
		Role:   role,
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, domain.WrapInternal(err, "ListUsers")
	}
	if users == nil {
		users = []*domain.User{}
	}
	return &UserPage{
		Users: users,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*UserDetails, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "GetUser")
	}
	progress, err := s.progress.List(ctx, id, "")
	if err != nil {
		return nil, domain.WrapInternal(err, "GetUser")
	}
	if progress == nil {
		progress = []*domain.Progress{}
	}
	return &UserDetails{User: u, Progress: progress}, nil
}

func (s *AdminService) UpdateUser(ctx context.Context, adminID, id string, in AdminUserInput) (*domain.User, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "UpdateUser")
	}

	changed := map[string]any{}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
		changed["full_name"] = u.FullName
	}
	if in.Role != nil {
		u.Role = *in.Role
		changed["role"] = u.Role
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
		changed["avatar_url"] = u.AvatarURL
	}
	if in.Preferences != nil {
		u.Preferences = in.Preferences
		changed["preferences"] = true
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, storeErr(err, "UpdateUser")
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminUpdateUser, domain.AuditCategoryAdmin, id, changed)
	return u, nil
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, id string) error {
	if adminID == id {
		return domain.NewInvalidArgument("cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeErr(err, "DeleteUser")
	}
	s.audit.LogAdminAction(ctx, adminID, domain.AuditActionAdminDeleteUser, domain.AuditCategoryAdmin, id, nil)
	return nil
}
