package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	var dbURLFlag string
	var forceVersion int
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&forceVersion, "version", -1, "schema version for the force command")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] up|down|force\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	migrator, err := database.NewMigrator(dbURL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialise migrator: %v", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migrator")
		}
	}()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "force":
		if forceVersion < 0 {
			flag.Usage()
			os.Exit(2)
		}
		err = migrator.Force(forceVersion)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("Migration %s failed: %v", command, err)
	}

	logger.WithField("command", command).Info("Migration finished")
}
