package domain

import "time"

// Plan is a named, priced subscription offering with a duration in days.
type Plan struct {
	ID           string
	Name         string
	Price        float64
	Features     []string
	DurationDays int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
