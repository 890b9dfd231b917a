package models

import "time"

// User is an account stored in PostgreSQL.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName,omitempty"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}
