package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/eventzone/booking-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	adminPassword := flag.String("admin-password", "", "also print a bcrypt hash for config/admins.yaml")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost for -admin-password")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("EventZone secret generator")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)

	if *adminPassword != "" {
		hash, err := utils.HashAdminPassword(*adminPassword, *cost)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		fmt.Println()
		fmt.Println("Admin credential entry:")
		fmt.Printf("  password_hash: %q\n", hash)
	}

	fmt.Println()
	fmt.Println("Keep these secrets out of version control.")
	fmt.Println("===========================================")
}
