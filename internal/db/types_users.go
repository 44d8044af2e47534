package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder. Authentication is a thin supporting
// surface; every tracked entity is owned by exactly one user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
