package users

import "time"

// User represents an account as seen by administrators. Password material
// never leaves the auth module.
type User struct {
	ID        int64
	Username  string
	Email     string
	Name      string
	RoleID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
