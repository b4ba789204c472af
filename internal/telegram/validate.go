package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// webAppDataKey is the fixed HMAC key Telegram uses to derive the per-bot secret.
const webAppDataKey = "WebAppData"

// Result is the outcome of a signature check. Data is set only when Valid.
type Result struct {
	Valid bool
	Data  *InitData
}

// ValidateInitData checks the hash of raw against botToken.
// It never panics; any failure yields an invalid Result.
func ValidateInitData(raw, botToken string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
		}
	}()

	data, err := ParseInitData(raw)
	if err != nil || data.Hash == "" {
		return Result{}
	}

	expected := Sign(dataCheckString(data.pairs), botToken)
	if !hmac.Equal([]byte(expected), []byte(data.Hash)) {
		return Result{}
	}
	return Result{Valid: true, Data: data}
}

// dataCheckString renders every non-hash pair as key=value, joined by '\n'.
// pairs must already be sorted by key.
func dataCheckString(pairs []pair) string {
	var b strings.Builder
	first := true
	for _, p := range pairs {
		if p.key == "hash" {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

// Sign returns the hex signature of a data-check string for botToken.
func Sign(checkString, botToken string) string {
	secret := hmacSHA256([]byte(webAppDataKey), []byte(botToken))
	return hex.EncodeToString(hmacSHA256(secret, []byte(checkString)))
}

func hmacSHA256(key, msg []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(msg)
	return h.Sum(nil)
}
