// Package session issues and verifies the HS256 bearer tokens handed out
// after a successful sign-in.
package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of every issued token.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers every verification failure: bad structure, bad
// signature, bad payload or expiry.
var ErrInvalidToken = errors.New("session: invalid token")

// Identity is what a token vouches for. UserID is the canonical user id;
// TelegramID is zero for password accounts.
type Identity struct {
	UserID       string
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
	IsPremium    bool
	PhotoURL     string
}

// Claims is the token payload.
type Claims struct {
	TelegramID   int64  `json:"telegram_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by c.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:       c.Subject,
		TelegramID:   c.TelegramID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Username:     c.Username,
		LanguageCode: c.LanguageCode,
		IsPremium:    c.IsPremium,
		PhotoURL:     c.PhotoURL,
	}
}

// ExpiresAtTime returns the expiry time, zero if unset.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Manager signs and verifies tokens with a shared secret.
type Manager struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, opts ...Option) *Manager {
	m := &Manager{secret: []byte(secret), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Issue signs a token for id. The caller must have verified id already.
func (m *Manager) Issue(id Identity) (string, *Claims, error) {
	now := m.now().Truncate(time.Second)

	subject := id.UserID
	if subject == "" {
		subject = strconv.FormatInt(id.TelegramID, 10)
	}

	claims := &Claims{
		TelegramID:   id.TelegramID,
		FirstName:    id.FirstName,
		LastName:     id.LastName,
		Username:     id.Username,
		LanguageCode: id.LanguageCode,
		IsPremium:    id.IsPremium,
		PhotoURL:     id.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Verify returns the claims of token if it is authentic and not expired.
// It never panics; every failure is ErrInvalidToken.
func (m *Manager) Verify(token string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return c, nil
}
