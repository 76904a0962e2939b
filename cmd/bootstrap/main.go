// Bootstrap provisions the admin owner user and its reserved TALADMIN
// referral code. Every registration without a usable referrer falls back
// to this code. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"github.com/talowa-org/talowa-backend/pkg/refcode"

	"github.com/joho/godotenv"
)

const adminUserID = "talowa-admin"

func main() {
	_ = godotenv.Load()

	if err := logger.Initialize(getEnv("LOG_LEVEL", "info")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	repo, err := repository.New(repository.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "talowa"),
		Password: getEnv("DB_PASSWORD", "talowa"),
		Name:     getEnv("DB_NAME", "talowa"),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	admin := &model.User{
		ID:             adminUserID,
		FullName:       "TALOWA Admin",
		ReferralCode:   refcode.AdminCode,
		ProvisionalRef: refcode.AdminCode,
		CurrentRole:    "member",
		Status:         model.StatusActive,
		MembershipPaid: true,
		RegisteredAt:   time.Now().UTC(),
	}

	err = repo.CreateUser(ctx, admin)
	if errors.Is(err, repository.ErrCodeTaken) {
		log.Println("Admin code already provisioned, nothing to do")
		return
	}
	if err != nil {
		log.Fatalf("Failed to provision admin user: %v", err)
	}

	log.Printf("Provisioned admin user %q with code %s", adminUserID, refcode.AdminCode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
