package models

import "time"

// LogEntry is a persisted slog record. It lives outside the domain tables.
type LogEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Level     string    `json:"level" gorm:"index"`
	Message   string    `json:"message"`
	Source    string    `json:"source" gorm:"index"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	RequestID string    `json:"request_id" gorm:"index"`
	Data      string    `json:"data"`
}
