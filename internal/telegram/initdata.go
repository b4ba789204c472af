package telegram

import (
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
)

// ErrMalformed is returned when initData cannot be tokenized as a query string.
var ErrMalformed = errors.New("telegram: malformed init data")

// User is the WebApp user record embedded in initData.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`

	AllowsWriteToPM bool `json:"allows_write_to_pm,omitempty"`
}

// Chat is the optional chat record embedded in initData.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Username string `json:"username,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// InitData is the decoded form of a WebApp initData string.
//
// User and Chat are nil when the corresponding value was absent or was not
// valid JSON; in the latter case the decoded text is kept in RawUser/RawChat.
type InitData struct {
	QueryID      string
	User         *User
	RawUser      string
	Chat         *Chat
	RawChat      string
	ChatType     string
	ChatInstance string
	StartParam   string
	AuthDate     int64
	CanSendAfter int64
	Hash         string

	// Fields holds every decoded value, first occurrence wins.
	Fields map[string]string

	pairs []pair
}

type pair struct {
	key, value string
}

// ParseInitData decodes raw into an InitData. A missing hash is not an error
// here; signature checks belong to ValidateInitData.
func ParseInitData(raw string) (*InitData, error) {
	pairs, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	d := &InitData{Fields: make(map[string]string, len(pairs)), pairs: pairs}
	for _, p := range pairs {
		if _, seen := d.Fields[p.key]; seen {
			continue
		}
		d.Fields[p.key] = p.value

		switch p.key {
		case "hash":
			d.Hash = p.value
		case "query_id":
			d.QueryID = p.value
		case "chat_type":
			d.ChatType = p.value
		case "chat_instance":
			d.ChatInstance = p.value
		case "start_param":
			d.StartParam = p.value
		case "auth_date":
			d.AuthDate = toInt(p.value)
		case "can_send_after":
			d.CanSendAfter = toInt(p.value)
		case "user":
			var u User
			if decodeNested(p.value, &u) {
				d.User = &u
			} else {
				d.RawUser = unescapeLenient(p.value)
			}
		case "chat":
			var c Chat
			if decodeNested(p.value, &c) {
				d.Chat = &c
			} else {
				d.RawChat = unescapeLenient(p.value)
			}
		}
	}
	return d, nil
}

// tokenize splits raw into decoded key/value pairs. Pairs are ordered by key,
// values of repeated keys keep their original order.
func tokenize(raw string) ([]pair, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, ErrMalformed
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]pair, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			pairs = append(pairs, pair{key: k, value: v})
		}
	}
	return pairs, nil
}

// decodeNested handles clients that escape the JSON value twice.
func decodeNested(v string, dst any) bool {
	return json.Unmarshal([]byte(unescapeLenient(v)), dst) == nil
}

func unescapeLenient(v string) string {
	if s, err := url.PathUnescape(v); err == nil {
		return s
	}
	return v
}

func toInt(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
