package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/salesdojo/backend/internal/db"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/migrations"
)

func main() {
	_ = godotenv.Load()

	action := flag.String("action", "up", "up, down or version")
	steps := flag.Int("steps", 1, "migrations to roll back with -action=down")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(context.Background(), dsn)
	defer pool.Close()

	switch *action {
	case "up":
		if err := migrations.Up(pool); err != nil {
			logger.Fatal("migrate up failed", "error", err)
		}
	case "down":
		if err := migrations.Down(pool, *steps); err != nil {
			logger.Fatal("migrate down failed", "error", err)
		}
	case "version":
	default:
		logger.Fatal("unknown action", "action", *action)
	}

	v, dirty, err := migrations.Version(pool)
	if err != nil {
		logger.Fatal("read version failed", "error", err)
	}
	fmt.Printf("schema version %d dirty=%t\n", v, dirty)
}
