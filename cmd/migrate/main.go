package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"stressbox/pkg/database"
)

const usage = "Usage: go run ./cmd/migrate [up|drop|status]"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := run(ctx, conn, database.CreateKVTableSQL); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Printf("✅ Table %s created\n", database.KVTable)

	case "drop":
		if err := run(ctx, conn, database.DropKVTableSQL); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Printf("✅ Table %s dropped\n", database.KVTable)

	case "status":
		if err := status(ctx, conn); err != nil {
			log.Fatalf("Failed to read status: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func run(ctx context.Context, conn *pgx.Conn, query string) error {
	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
	}
	return nil
}

func status(ctx context.Context, conn *pgx.Conn) error {
	var exists bool
	if err := conn.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, database.KVTable).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		fmt.Printf("  %s: missing (run \"up\")\n", database.KVTable)
		return nil
	}

	var visitors, total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE key LIKE '%visitor:%'), COUNT(*) FROM `+database.KVTable,
	).Scan(&visitors, &total); err != nil {
		return err
	}
	fmt.Printf("  %s: %d keys, %d visitor records\n", database.KVTable, total, visitors)
	return nil
}
