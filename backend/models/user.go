package models

// User is an account that can log in. Password holds the bcrypt hash only.
type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Name     *string `json:"name"`
	Email    string  `json:"email" gorm:"not null;uniqueIndex"`
	Password string  `json:"-" gorm:"not null"` // hashed, never serialize
	IsAdmin  bool    `json:"is_admin" gorm:"default:false"`
}
