package models

import "time"

// User represents a registered account. User has an email and a password hash.
// The password hash is never serialised.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
