package domain

import "time"

// User is a registered account. Users are immutable after registration.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Username limits.
const (
	MaxUsernameLength = 50
	MinPasswordLength = 8
)
