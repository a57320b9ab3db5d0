package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/eventzone/booking-backend/internal/config"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/joho/godotenv"
)

// tables holds every EventZone table in truncation order. Events are seeded by
// migration, so they are kept unless -include-events is set.
var tables = []string{
	"chat_messages",
	"feedback",
	"password_otps",
	"otp_rate_limits",
	"bookings",
	"coupons",
	"selected_city",
	"selected_date",
	"users",
}

func main() {
	var dbURLFlag string
	var includeEvents bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&includeEvents, "include-events", false, "also truncate the events catalog")
	flag.Parse()

	// .env in the working directory keeps secrets off the command line
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	targets := tables
	if includeEvents {
		targets = append(targets, "events")
	}

	fmt.Println("Connected to database. Truncating tables...")

	ctx := context.Background()
	truncateSQL := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(targets, ", "))
	err = db.WithConn(ctx, func(conn database.Conn) error {
		_, err := conn.ExecContext(ctx, truncateSQL)
		return err
	})
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	fmt.Println("Post-clear row counts:")
	err = db.WithConn(ctx, func(conn database.Conn) error {
		for _, t := range targets {
			var count int
			if err := conn.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
				fmt.Printf("  %s: error: %v\n", t, err)
				continue
			}
			fmt.Printf("  %s: %d\n", t, count)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("failed to count rows: %v", err)
	}
}
