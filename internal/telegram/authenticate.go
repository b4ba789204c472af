package telegram

import (
	"errors"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrInvalidSignature = errors.New("telegram: invalid signature")
	ErrExpired          = errors.New("telegram: auth date expired")
	ErrNoUser           = errors.New("telegram: no user in init data")
)

// Authenticate runs the full check: signature, freshness, then user presence.
// The returned error says which gate failed; it is meant for logs only.
func Authenticate(raw, botToken string, maxAge int64) (*User, error) {
	return AuthenticateAt(raw, botToken, maxAge, time.Now())
}

// AuthenticateAt is Authenticate with an explicit clock.
func AuthenticateAt(raw, botToken string, maxAge int64, now time.Time) (*User, error) {
	res := ValidateInitData(raw, botToken)
	if !res.Valid {
		return nil, ErrInvalidSignature
	}
	if !IsAuthDateValidAt(res.Data.AuthDate, maxAge, now) {
		return nil, ErrExpired
	}
	if res.Data.User == nil || res.Data.User.ID == 0 {
		return nil, ErrNoUser
	}
	return res.Data.User, nil
}

// ExtractUser returns the user record of raw without checking its signature.
// Only use it on data that has already been validated.
func ExtractUser(raw string) *User {
	d, err := ParseInitData(raw)
	if err != nil {
		return nil
	}
	return d.User
}

// SignInitData builds a signed initData query string from fields.
// Used by tests and the dev token tool to simulate a WebApp client.
func SignInitData(fields map[string]string, botToken string) string {
	vals := url.Values{}
	for k, v := range fields {
		vals.Set(k, v)
	}
	pairs, _ := tokenize(vals.Encode())
	vals.Set("hash", Sign(dataCheckString(pairs), botToken))
	return vals.Encode()
}

// FormatAuthDate renders t as an auth_date value.
func FormatAuthDate(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
