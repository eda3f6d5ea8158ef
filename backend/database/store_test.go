package database

import (
	"context"
	"testing"
	"time"

	"cards-app/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	first := &models.User{Email: "dup@spam.com", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, first))
	assert.NotZero(t, first.ID)

	second := &models.User{Email: "dup@spam.com", Password: "hash2"}
	err := store.CreateUser(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var n int64
	require.NoError(t, store.DB().Model(&models.User{}).Where("email = ?", "dup@spam.com").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestStore_FindUser(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	user := &models.User{Email: "find@spam.com", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, user))

	byEmail, err := store.FindUserByEmail(ctx, "find@spam.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@spam.com", byID.Email)

	_, err = store.FindUserByEmail(ctx, "FIND@spam.com")
	assert.ErrorIs(t, err, ErrNotFound, "lookup is an exact match")

	_, err = store.FindUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IsAdmin(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	admin := &models.User{Email: "a@spam.com", Password: "h", IsAdmin: true}
	plain := &models.User{Email: "p@spam.com", Password: "h"}
	require.NoError(t, store.CreateUser(ctx, admin))
	require.NoError(t, store.CreateUser(ctx, plain))

	ok, err := store.IsAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsAdmin(ctx, plain.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IsAdmin(ctx, 4242)
	require.NoError(t, err, "missing user is not a fault")
	assert.False(t, ok)
}

func TestStore_ListCards_LiteralPriorityOrder(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, testHasher, time.Now()))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)

	// 'M' > 'H', so descending string order puts Medium first
	assert.Equal(t, []string{"Marshmallow", "ORM Queries", "SQLAlchemy", "Start the project"}, titles(cards))
	assert.Equal(t, []string{"Medium", "Medium", "High", "High"},
		[]string{cards[0].Priority, cards[1].Priority, cards[2].Priority, cards[3].Priority})
}

func TestStore_ListCards_NoSeverityRanking(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, testHasher, time.Now()))
	require.NoError(t, db.Create(&models.Card{Title: "Tidy up", Priority: "Low", Status: "To Do", Date: time.Now()}).Error)

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Marshmallow", "ORM Queries", "Tidy up", "SQLAlchemy", "Start the project"}, titles(cards))
}

func TestStore_AllAndFirstCard(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	_, err := store.FirstCard(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Seed(ctx, db, testHasher, time.Now()))

	all, err := store.AllCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Start the project", "SQLAlchemy", "ORM Queries", "Marshmallow"}, titles(all))

	first, err := store.FirstCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Start the project", first.Title)
}

func TestStore_CountCardsByStatus(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, testHasher, time.Now()))

	n, err := store.CountCardsByStatus(ctx, "Ongoing")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = store.CountCardsByStatus(ctx, "Done")
	require.NoError(t, err)
	assert.Zero(t, n)
}
