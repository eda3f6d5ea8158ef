package database

import (
	"context"
	"fmt"
	"time"

	"cards-app/backend/models"

	"gorm.io/gorm"
)

// PasswordHasher is the part of auth.Hasher the seed needs.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type seedUser struct {
	name     string
	email    string
	password string
	admin    bool
}

var seedUsers = []seedUser{
	{email: "admin@spam.com", password: "eggs", admin: true},
	{name: "John Cleese", email: "someone@spam.com", password: "12345"},
	{name: "Ron Swanson", email: "ron@spam.com", password: "meettom", admin: true},
}

var seedCards = []models.Card{
	{Title: "Start the project", Description: "Stage 1 - Create the database", Status: "To Do", Priority: "High"},
	{Title: "SQLAlchemy", Description: "Stage 2 - Integrate ORM", Status: "Ongoing", Priority: "High"},
	{Title: "ORM Queries", Description: "Stage 3 - Implement several queries", Status: "Ongoing", Priority: "Medium"},
	{Title: "Marshmallow", Description: "Stage 4 - Implement Marshmallow to jsonify models", Status: "Ongoing", Priority: "Medium"},
}

// Seed inserts the fixed sample users and cards in a single transaction.
// Cards are dated today.
func Seed(ctx context.Context, db *gorm.DB, hasher PasswordHasher, today time.Time) error {
	y, m, d := today.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	cards := make([]models.Card, len(seedCards))
	for i, c := range seedCards {
		c.Date = date
		cards[i] = c
	}

	users := make([]models.User, 0, len(seedUsers))
	for _, u := range seedUsers {
		hash, err := hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", u.email, err)
		}
		user := models.User{Email: u.email, Password: hash, IsAdmin: u.admin}
		if u.name != "" {
			name := u.name
			user.Name = &name
		}
		users = append(users, user)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cards).Error; err != nil {
			return fmt.Errorf("seed cards: %w", err)
		}
		if err := tx.Create(&users).Error; err != nil {
			if isDuplicateEntryError(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("seed users: %w", err)
		}
		return nil
	})
}
