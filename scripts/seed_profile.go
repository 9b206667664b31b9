package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("adding test profile into database...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "skater01"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	query := `
		INSERT INTO profiles (id, username, display_name, bio)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (username) DO UPDATE SET display_name = $3
	`
	_, err = pool.Exec(context.Background(), query, uuid.New(), username, "Test Skater")
	if err != nil {
		log.Fatalf("cannot add profile: %v", err)
	}

	fmt.Printf("added or updated profile '%s' successfully!\n", username)
}
