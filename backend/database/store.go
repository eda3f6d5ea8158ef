package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cards-app/backend/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email address already in use")
)

// Store holds the queries the handlers and commands run against users and cards.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	if db == nil {
		panic("database connection cannot be nil for Store")
	}
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// CreateUser inserts a single user. A unique violation on email is reported
// as ErrDuplicateEmail and leaves nothing committed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user %q: %w", user.Email, err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// IsAdmin reports whether the user exists and carries the admin flag.
// A user that no longer exists is simply not an admin.
func (s *Store) IsAdmin(ctx context.Context, id uint) (bool, error) {
	user, err := s.FindUserByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// ListCards returns every card ordered by priority descending, then title.
// Priority is compared as a plain string, so "Medium" ranks above "High".
func (s *Store) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).Order("priority DESC").Order("title").Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// AllCards returns every card in insertion order.
func (s *Store) AllCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).Order("id").Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("all cards: %w", err)
	}
	return cards, nil
}

func (s *Store) FirstCard(ctx context.Context) (*models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Limit(1).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("first card: %w", err)
	}
	if len(cards) == 0 {
		return nil, ErrNotFound
	}
	return &cards[0], nil
}

func (s *Store) CountCardsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Card{}).Where("status = ?", status).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %q cards: %w", status, err)
	}
	return n, nil
}

// isDuplicateEntryError recognises unique violations whether or not the
// dialect translated them.
func isDuplicateEntryError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
