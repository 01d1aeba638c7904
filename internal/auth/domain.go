package auth

import "time"

// User represents an authenticated user account.
type User struct {
	ID           int64
	Username     string
	Email        string
	Name         string
	PasswordHash string
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
