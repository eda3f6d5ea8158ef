package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"cards-app/backend/models"

	"gorm.io/gorm"
)

// Handler writes JSON records to an io.Writer and, when a database is
// attached, mirrors each record into the log_entries table. The "source",
// "user_id" and "request_id" attributes are lifted into their own columns.
type Handler struct {
	db          *gorm.DB
	jsonHandler slog.Handler
	level       slog.Leveler
	attrs       []slog.Attr
}

func NewHandler(w io.Writer, level slog.Leveler, db *gorm.DB) *Handler {
	return &Handler{
		db:          db,
		jsonHandler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		level:       level,
	}
}

func extractUserID(v slog.Value) uint {
	switch v.Kind() {
	case slog.KindInt64:
		if v.Int64() > 0 {
			return uint(v.Int64())
		}
	case slog.KindUint64:
		return uint(v.Uint64())
	}
	return 0
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.jsonHandler.Handle(ctx, r); err != nil {
		return err
	}
	if h.db == nil {
		return nil
	}

	entry := models.LogEntry{
		CreatedAt: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	data := make(map[string]any)
	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "source":
			entry.Source = a.Value.String()
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			if id := extractUserID(a.Value); id > 0 {
				entry.UserID = &id
			}
		default:
			data[a.Key] = a.Value.Resolve().Any()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			entry.Data = string(b)
		}
	}

	return h.db.WithContext(context.WithoutCancel(ctx)).Create(&entry).Error
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &Handler{
		db:          h.db,
		jsonHandler: h.jsonHandler.WithAttrs(attrs),
		level:       h.level,
		attrs:       newAttrs,
	}
}

// WithGroup nests attributes in the JSON output. Persisted rows keep a
// flat data column.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		db:          h.db,
		jsonHandler: h.jsonHandler.WithGroup(name),
		level:       h.level,
		attrs:       h.attrs,
	}
}

// CleanupOldLogs deletes persisted records older than maxAge every interval
// until ctx is cancelled.
func CleanupOldLogs(ctx context.Context, db *gorm.DB, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			PruneLogs(db, time.Now().Add(-maxAge))
		}
	}
}

// PruneLogs removes records created before cutoff and returns how many went.
func PruneLogs(db *gorm.DB, cutoff time.Time) int64 {
	return db.Where("created_at < ?", cutoff).Delete(&models.LogEntry{}).RowsAffected
}
