package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/repository"
	"github.com/salesdojo/backend/internal/session"
	"github.com/salesdojo/backend/internal/telegram"
)

// ErrTelegramDisabled means no bot token is configured.
var ErrTelegramDisabled = errors.New("telegram authentication not configured")

var argonParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

const defaultLanguage = "ru"

type AuthConfig struct {
	BotToken string
	MaxAge   int64
	Pepper   string
}

// AuthService resolves credentials to users and manages session tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *session.Manager
	blocklist repository.TokenBlocklist
	audit     *AuditService
	v         *validator.Validate
	cfg       AuthConfig
	now       func() time.Time
}

// NewAuthService builds the service. blocklist may be nil, then sign-out
// only clears the cookie.
func NewAuthService(
	users repository.UserRepository,
	tokens *session.Manager,
	blocklist repository.TokenBlocklist,
	audit *AuditService,
	v *validator.Validate,
	cfg AuthConfig,
) *AuthService {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = telegram.DefaultMaxAge
	}
	return &AuthService{
		users: users, tokens: tokens, blocklist: blocklist, audit: audit, v: v, cfg: cfg, now: time.Now,
	}
}

// Session is the outcome of a successful sign-in.
type Session struct {
	User   *domain.User
	Token  string
	Claims *session.Claims
}

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,min=2"`
}

type ProfileInput struct {
	FullName    *string        `json:"full_name" validate:"omitempty,min=2"`
	AvatarURL   *string        `json:"avatar_url" validate:"omitempty,url"`
	Preferences map[string]any `json:"preferences"`
}

// Resolve maps any credential to its canonical user.
func (s *AuthService) Resolve(ctx context.Context, cred Credential) (*domain.User, error) {
	switch c := cred.(type) {
	case PasswordCredential:
		return s.resolvePassword(ctx, c)
	case TelegramCredential:
		return s.resolveTelegram(ctx, c)
	default:
		return nil, domain.ErrInvalidCredentials
	}
}

func (s *AuthService) resolvePassword(ctx context.Context, c PasswordCredential) (*domain.User, error) {
	if err := s.v.Struct(c); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(c.Email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, domain.WrapInternal(err, "resolvePassword")
	}
	if user.PasswordHash == "" {
		// telegram-only account
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := argon2id.ComparePasswordAndHash(c.Password+s.cfg.Pepper, user.PasswordHash)
	if err != nil {
		return nil, domain.WrapInternal(err, "resolvePassword")
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) resolveTelegram(ctx context.Context, c TelegramCredential) (*domain.User, error) {
	if c.InitData == "" {
		return nil, domain.NewInvalidArgument("initData is required")
	}
	if s.cfg.BotToken == "" {
		return nil, ErrTelegramDisabled
	}

	tgUser, err := telegram.AuthenticateAt(c.InitData, s.cfg.BotToken, s.cfg.MaxAge, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return s.upsertTelegramUser(ctx, tgUser)
}

// upsertTelegramUser fetches the user bound to tg.ID, creating it on first
// sign-in and refreshing profile fields afterwards.
func (s *AuthService) upsertTelegramUser(ctx context.Context, tg *telegram.User) (*domain.User, error) {
	fullName := strings.TrimSpace(tg.FirstName + " " + tg.LastName)
	tgData := map[string]any{"allows_write_to_pm": tg.AllowsWriteToPM}

	user, err := s.users.GetByTelegramID(ctx, tg.ID)
	if errors.Is(err, domain.ErrNotFound) {
		id := tg.ID
		lang := tg.LanguageCode
		if lang == "" {
			lang = defaultLanguage
		}
		user = &domain.User{
			Email:        "telegram_" + strconv.FormatInt(tg.ID, 10) + "@telegram.local",
			FullName:     fullName,
			Role:         domain.RoleUser,
			TelegramID:   &id,
			Username:     tg.Username,
			FirstName:    tg.FirstName,
			LastName:     tg.LastName,
			LanguageCode: lang,
			IsPremium:    tg.IsPremium,
			PhotoURL:     tg.PhotoURL,
			Preferences:  map[string]any{"telegram_data": tgData},
		}
		if err := s.users.Create(ctx, user); err != nil {
			if !errors.Is(err, domain.ErrAlreadyExists) {
				return nil, domain.WrapInternal(err, "create telegram user")
			}
			// a concurrent first sign-in created it
			existing, lookupErr := s.users.GetByTelegramID(ctx, tg.ID)
			if lookupErr != nil {
				return nil, domain.WrapInternal(lookupErr, "lookup telegram user")
			}
			return existing, nil
		}
		logger.Info("telegram user created", "user_id", user.ID, "telegram_id", tg.ID)
		return user, nil
	}
	if err != nil {
		return nil, domain.WrapInternal(err, "lookup telegram user")
	}

	updated := *user
	updated.FullName = fullName
	updated.Username = tg.Username
	updated.FirstName = tg.FirstName
	updated.LastName = tg.LastName
	updated.IsPremium = tg.IsPremium
	if tg.LanguageCode != "" {
		updated.LanguageCode = tg.LanguageCode
	}
	if tg.PhotoURL != "" {
		updated.PhotoURL = tg.PhotoURL
	}
	prefs := make(map[string]any, len(user.Preferences)+1)
	for k, v := range user.Preferences {
		prefs[k] = v
	}
	prefs["telegram_data"] = tgData
	updated.Preferences = prefs

	if err := s.users.Update(ctx, &updated); err != nil {
		// stale profile data is not worth failing the sign-in
		logger.Warn("failed to refresh telegram user", "user_id", user.ID, "error", err)
		return user, nil
	}
	return &updated, nil
}

// SignIn resolves cred and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, cred Credential, meta RequestMeta) (*Session, error) {
	user, err := s.Resolve(ctx, cred)
	if err != nil {
		if !errors.Is(err, domain.ErrInternal) && !errors.Is(err, ErrTelegramDisabled) {
			s.audit.LogLoginFailed(ctx, cred.method(), err.Error(), meta)
		}
		return nil, err
	}

	sess, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.audit.LogLogin(ctx, user.ID, cred.method(), meta)
	return sess, nil
}

// SignUp creates a password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput, meta RequestMeta) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.v.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	hash, err := argon2id.CreateHash(in.Password+s.cfg.Pepper, argonParams)
	if err != nil {
		return nil, domain.WrapInternal(err, "SignUp")
	}

	user := &domain.User{
		Email:        strings.ToLower(in.Email),
		FullName:     in.FullName,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		LanguageCode: defaultLanguage,
		Preferences:  map[string]any{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, domain.WrapInternal(err, "SignUp")
	}

	sess, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, user.ID, domain.AuditActionSignUp, domain.AuditCategoryAuth, meta, nil)
	return sess, nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, domain.WrapInternal(err, "issue token")
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}

func identityOf(u *domain.User) session.Identity {
	id := session.Identity{
		UserID:       u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
		IsPremium:    u.IsPremium,
		PhotoURL:     u.PhotoURL,
	}
	if u.TelegramID != nil {
		id.TelegramID = *u.TelegramID
	}
	if id.FirstName == "" {
		id.FirstName = u.FullName
	}
	return id
}

// Authenticate verifies a presented token and loads its user.
// Every failure is domain.ErrUnauthorized except store outages.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *session.Claims, error) {
	if token == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil, domain.ErrUnauthorized
	}

	if s.blocklist != nil && claims.ID != "" {
		revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// cannot prove the token is live
			logger.Error("token blocklist lookup failed", "error", err)
			return nil, nil, domain.ErrUnauthorized
		}
		if revoked {
			return nil, nil, domain.ErrUnauthorized
		}
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) && claims.TelegramID != 0 {
		user, err = s.users.GetByTelegramID(ctx, claims.TelegramID)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil, domain.ErrUnauthorized
	case err != nil:
		return nil, nil, domain.WrapInternal(err, "Authenticate")
	}
	return user, claims, nil
}

// SignOut revokes the token behind claims until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, claims *session.Claims, meta RequestMeta) error {
	if claims == nil {
		return nil
	}
	if s.blocklist != nil && claims.ID != "" {
		if err := s.blocklist.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
			return domain.WrapInternal(err, "SignOut")
		}
	}
	s.audit.LogLogout(ctx, claims.Subject, meta)
	return nil
}

// UpdateProfile applies the caller's own profile changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, invalidInput(err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.Preferences != nil {
		user.Preferences = in.Preferences
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, domain.WrapInternal(err, "UpdateProfile")
	}
	s.audit.Log(ctx, user.ID, domain.AuditActionProfileEdit, domain.AuditCategoryAuth, RequestMeta{}, nil)
	return user, nil
}
