package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/models"
)

// SeedAdminCredential makes sure the credentials collection holds one admin
// login built from ADMIN_EMAIL / ADMIN_PASSWORD. Existing credentials are
// left alone.
func SeedAdminCredential(ctx context.Context, creds *models.CredentialModel) error {
	email := NormalizeEmail(os.Getenv("ADMIN_EMAIL"))
	pass := os.Getenv("ADMIN_PASSWORD")

	if email == "" || pass == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	existing, err := creds.FindByEmailAndRole(ctx, email, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		log.Println("Admin credential already exists:", email)
		return nil
	}

	hash, err := HashPassword(pass)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = creds.Create(ctx, bson.M{
		"id":           "admin_" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		"email":        email,
		"passwordHash": hash,
		"role":         "admin",
	})
	if err != nil {
		return fmt.Errorf("seed admin credential: %w", err)
	}

	log.Println("Admin credential seeded:", email)
	return nil
}
