package domain

import "time"

// User is the domain model for registered subscribers. PublicID is the
// 6-character alphanumeric identifier exposed to clients; ID is the internal
// record id used in session tokens.
type User struct {
	ID           string
	PublicID     string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
