package domain

import "time"

// Admin models an operator account that ticket actions are attributed to.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	UnitID       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
