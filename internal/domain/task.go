package domain

import "time"

// Task is a single todo item belonging to exactly one user.
type Task struct {
	ID          string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
