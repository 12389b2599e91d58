// cmd/seeder/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/unclebandit/smsleopard-activation/internal/db"
	"github.com/unclebandit/smsleopard-activation/internal/logger"
)

var seedFiles = []string{
	"seed/schema.sql",
	"seed/tenants.sql",
	"seed/events.sql",
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Open(dsn)
	if err != nil {
		logger.Log.Fatal(err)
	}
	defer conn.Close()

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Log.Fatalf("failed to read %s: %v", file, err)
		}

		if _, err := conn.Exec(string(content)); err != nil {
			logger.Log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Seeded: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
