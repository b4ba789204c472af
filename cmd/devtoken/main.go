// Command devtoken prints signed Telegram initData, or a session token, for
// exercising the API without a real Mini App.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/salesdojo/backend/internal/config"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/session"
	"github.com/salesdojo/backend/internal/telegram"
)

func main() {
	tgID := flag.Int64("id", 1234567890, "telegram user id")
	first := flag.String("first", "Tester", "first name")
	username := flag.String("username", "testuser", "telegram username")
	age := flag.Duration("age", 0, "how old auth_date should be")
	userID := flag.String("user", "", "issue a session token for this user id instead")
	flag.Parse()

	cfg := config.Load()

	if *userID != "" {
		token, claims, err := session.NewManager(cfg.JWTSecret).Issue(session.Identity{UserID: *userID, TelegramID: *tgID})
		if err != nil {
			logger.Fatal("failed to issue token", "error", err)
		}
		fmt.Println(token)
		fmt.Println("expires", claims.ExpiresAtTime().Format(time.RFC3339))
		return
	}

	if cfg.BotToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN not set")
	}
	user := fmt.Sprintf(`{"id":%d,"first_name":%q,"username":%q,"language_code":"ru"}`, *tgID, *first, *username)
	fmt.Println(telegram.SignInitData(map[string]string{
		"query_id":  "dev",
		"auth_date": telegram.FormatAuthDate(time.Now().Add(-*age)),
		"user":      user,
	}, cfg.BotToken))
}
