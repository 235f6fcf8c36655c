package main

import (
	"context"
	"log"
	"os"
	"time"

	"feedback-system/internal/config"
	"feedback-system/internal/database"
	"feedback-system/internal/models"
	"feedback-system/internal/repository"
	"feedback-system/internal/utils"
	"feedback-system/pkg/logger"
)

// Seeds the admin account from ADMIN_NAME / ADMIN_EMAIL / ADMIN_PASSWORD.
// Skips creation when the email is already registered.
func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	adminName := os.Getenv("ADMIN_NAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminName == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_NAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.New(cfg.MongoURI, cfg.MongoDatabase)
	if err := db.Connect(ctx); err != nil {
		log.Fatal("Database connection failed: ", err)
	}
	defer db.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("Index creation failed: ", err)
	}

	users := repository.NewMongoUserRepository(db.Database())

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal("Failed to check for existing admin: ", err)
	}
	if existing != nil {
		log.Println("Admin user already exists:", existing.Email)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password: ", err)
	}

	admin := &models.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: passwordHash,
		Role:     models.RoleAdmin,
	}

	if err := users.Create(ctx, admin); err != nil {
		log.Fatal("Failed to create admin: ", err)
	}

	log.Println("Admin user created successfully:", admin.Email)
}
