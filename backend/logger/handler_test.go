package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"cards-app/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.LogEntry{}))
	return db
}

func TestHandler_WritesJSONAndRow(t *testing.T) {
	db := setupTestDB(t)
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, db)).With("source", "auth")

	log.Info("user logged in", "user_id", uint(3), "request_id", "req-1", "email", "admin@spam.com")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "user logged in", line["msg"])
	assert.Equal(t, "auth", line["source"])

	var entries []models.LogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "INFO", e.Level)
	assert.Equal(t, "auth", e.Source)
	assert.Equal(t, "req-1", e.RequestID)
	require.NotNil(t, e.UserID)
	assert.Equal(t, uint(3), *e.UserID)
	assert.JSONEq(t, `{"email":"admin@spam.com"}`, e.Data)
}

func TestHandler_RespectsLevel(t *testing.T) {
	db := setupTestDB(t)
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelWarn, db))

	log.Info("ignored")
	log.Warn("kept")

	var n int64
	require.NoError(t, db.Model(&models.LogEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.NotContains(t, buf.String(), "ignored")
}

func TestHandler_WithoutDatabase(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, nil))

	log.Info("stdout only", "source", "cli")

	assert.Contains(t, buf.String(), `"source":"cli"`)
}

func TestHandler_WithGroupNestsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, slog.LevelInfo, nil)).WithGroup("http")

	log.Info("request", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	group, ok := line["http"].(map[string]any)
	require.True(t, ok, buf.String())
	assert.Equal(t, float64(200), group["status"])
}

func TestExtractUserID(t *testing.T) {
	assert.Equal(t, uint(5), extractUserID(slog.Int64Value(5)))
	assert.Equal(t, uint(6), extractUserID(slog.Uint64Value(6)))
	assert.Zero(t, extractUserID(slog.Int64Value(-1)))
	assert.Zero(t, extractUserID(slog.StringValue("7")))
}

func TestPruneLogs(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.LogEntry{
		{CreatedAt: now.Add(-72 * time.Hour), Message: "old"},
		{CreatedAt: now, Message: "new"},
	}).Error)

	removed := PruneLogs(db, now.Add(-48*time.Hour))
	assert.Equal(t, int64(1), removed)

	var left []models.LogEntry
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].Message)
}
