package service

import (
	"context"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/repository"
)

// RequestMeta carries client details recorded with audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService handles audit logging. Write failures are logged, never returned.
type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID, action, category string, meta RequestMeta, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogLogin logs a successful sign-in
func (s *AuditService) LogLogin(ctx context.Context, userID, method string, meta RequestMeta) {
	s.Log(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, meta, map[string]any{"method": method})
}

// LogLoginFailed records a rejected sign-in. reason stays server side.
func (s *AuditService) LogLoginFailed(ctx context.Context, method, reason string, meta RequestMeta) {
	s.Log(ctx, "", domain.AuditActionLoginFailed, domain.AuditCategoryAuth, meta,
		map[string]any{"method": method, "reason": reason})
}

func (s *AuditService) LogLogout(ctx context.Context, userID string, meta RequestMeta) {
	s.Log(ctx, userID, domain.AuditActionLogout, domain.AuditCategoryAuth, meta, nil)
}

// LogAdminAction logs an admin action
func (s *AuditService) LogAdminAction(ctx context.Context, adminID, action, category, targetID string, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	details["target_id"] = targetID
	s.Log(ctx, adminID, action, category, RequestMeta{}, details)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.ListByUser(ctx, userID, clampLimit(limit))
}

// GetRecentLogs returns recent audit logs, optionally of one category
func (s *AuditService) GetRecentLogs(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.List(ctx, category, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return min(limit, 500)
}
