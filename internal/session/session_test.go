package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func sampleIdentity() Identity {
	return Identity{
		UserID:       "9c1f3c1e-7a55-4a53-9a4d-2f7b9c2f0a11",
		TelegramID:   279058397,
		FirstName:    "Vladislav",
		LastName:     "Kibenko",
		Username:     "vdkfrost",
		LanguageCode: "ru",
		IsPremium:    true,
		PhotoURL:     "https://t.me/i/userpic/320/abc.jpg",
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	identities := []Identity{
		sampleIdentity(),
		{TelegramID: 1, FirstName: "A"},
		{UserID: "u-2", FirstName: "Only", LanguageCode: "en"},
	}
	m := NewManager("secret-a")

	for _, id := range identities {
		token, issued, err := m.Issue(id)
		require.NoError(t, err)
		assert.Len(t, strings.Split(token, "."), 3)

		claims, err := m.Verify(token)
		require.NoError(t, err)

		want := id
		if want.UserID == "" {
			want.UserID = issued.Subject
		}
		assert.Equal(t, want, claims.Identity())
		assert.Equal(t, issued.ID, claims.ID)
	}
}

func TestIssue_ExpiryIsFixed(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewManager("s", WithClock(fixedClock(now)))

	_, claims, err := m.Issue(sampleIdentity())
	require.NoError(t, err)
	assert.Equal(t, now, claims.IssuedAt.Time)
	assert.Equal(t, now.Add(TokenTTL), claims.ExpiresAtTime())
	assert.NotEmpty(t, claims.ID)
}

func TestVerify_TamperedPayload(t *testing.T) {
	m := NewManager("secret-a")
	token, _, err := m.Issue(sampleIdentity())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload := parts[1]
	for i := range payload {
		repl := byte('A')
		if payload[i] == 'A' {
			repl = 'B'
		}
		flipped := payload[:i] + string(repl) + payload[i+1:]
		_, err := m.Verify(parts[0] + "." + flipped + "." + parts[2])
		require.ErrorIs(t, err, ErrInvalidToken, "position %d", i)
	}
}

func TestVerify_SignatureEncodingMustMatch(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	m := NewManager("secret-a")
	token, _, err := m.Issue(sampleIdentity())
	require.NoError(t, err)

	last := token[len(token)-1]
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == last {
			continue
		}
		altered := token[:len(token)-1] + string(alphabet[i])
		_, err := m.Verify(altered)
		require.ErrorIs(t, err, ErrInvalidToken, "last char %q -> %q", last, alphabet[i])
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, _, err := NewManager("secret-a").Issue(sampleIdentity())
	require.NoError(t, err)

	_, err = NewManager("secret-b").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	token, _, err := NewManager("s", WithClock(fixedClock(issuedAt))).Issue(sampleIdentity())
	require.NoError(t, err)

	exp := issuedAt.Add(TokenTTL)

	_, err = NewManager("s", WithClock(fixedClock(exp.Add(-time.Second)))).Verify(token)
	assert.NoError(t, err, "exp = now + 1 is accepted")

	_, err = NewManager("s", WithClock(fixedClock(exp.Add(time.Second)))).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "exp = now - 1 is rejected")
}

func TestVerify_Malformed(t *testing.T) {
	m := NewManager("s")
	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "....", "e30.e30.sig"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		TelegramID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s"))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	m := NewManager("s")
	for _, tok := range []string{hs512, none} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	claims := &Claims{TelegramID: 1, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
