package domain

import "time"

// Unit represents an organizational unit (hospital department) that owns
// tickets and receives escalations.
type Unit struct {
	ID        string
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
