package models

import "time"

type Card struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	Date        time.Time `json:"date" gorm:"type:date"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
}
