package domain

import "time"

// User represents a dashboard account that can authenticate.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
