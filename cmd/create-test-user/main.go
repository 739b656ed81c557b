package main

import (
	"flag"
	"log"

	"games-ticketing-platform/internal/config"
	"games-ticketing-platform/internal/database"
	"games-ticketing-platform/internal/models"
	"games-ticketing-platform/internal/repositories"
	"games-ticketing-platform/internal/utils"
)

func main() {
	email := flag.String("email", "testuser@example.com", "email for the account")
	password := flag.String("password", "", "password for the account (random when empty)")
	firstName := flag.String("first-name", "Test", "first name")
	lastName := flag.String("last-name", "User", "last name")
	check := flag.Bool("check", false, "verify the password against the stored account instead of creating it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repositories.NewUserRepository(db.DB)

	if *check {
		user, err := userRepo.GetByEmail(*email)
		if err != nil {
			log.Fatalf("Failed to look up %s: %v", *email, err)
		}
		ok, err := utils.VerifyPassword(*password, user.PasswordHash)
		if err != nil {
			log.Fatalf("Failed to verify password: %v", err)
		}
		if !ok {
			log.Fatalf("Password does not match for %s", *email)
		}
		log.Printf("Password OK for %s (%s)", user.Email, user.ID)
		return
	}

	plain := *password
	if plain == "" {
		plain, err = utils.GenerateSecureToken(12)
		if err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}
	}

	hash, err := utils.HashPassword(plain)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := userRepo.Create(&models.User{
		Email:        *email,
		FirstName:    *firstName,
		LastName:     *lastName,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("Created user %s (%s)", user.Email, user.ID)
	if *password == "" {
		log.Printf("Generated password: %s", plain)
	}
}
