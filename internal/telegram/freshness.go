package telegram

import "time"

// DefaultMaxAge is the default freshness window for auth_date, in seconds.
const DefaultMaxAge int64 = 86400

// IsAuthDateValid reports whether authDate is at most maxAgeSeconds old.
// Future timestamps are accepted.
func IsAuthDateValid(authDate, maxAgeSeconds int64) bool {
	return IsAuthDateValidAt(authDate, maxAgeSeconds, time.Now())
}

// IsAuthDateValidAt is IsAuthDateValid with an explicit clock. maxAgeSeconds
// is used as given; callers apply DefaultMaxAge.
func IsAuthDateValidAt(authDate, maxAgeSeconds int64, now time.Time) bool {
	return now.Unix()-authDate <= maxAgeSeconds
}
