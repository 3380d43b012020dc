package models

import (
	"time"
)

// User represents an account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
