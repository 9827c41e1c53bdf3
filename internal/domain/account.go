package domain

import "time"

// Account is the authentication-facing record for a caller. Historical rows
// may lack Email or LinkedAdminID; the identity bridge tolerates both.
type Account struct {
	ID            string
	Email         *string
	Role          Role
	UnitID        *string
	LinkedAdminID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Principal is the resolved identity of the caller for one request. It is
// built per request and never persisted.
type Principal struct {
	ID            string
	Role          Role
	HomeUnitID    *string
	Email         *string
	LinkedAdminID *string
}

// HomeUnit returns the principal's unit id, or empty when unassigned.
func (p *Principal) HomeUnit() string {
	if p.HomeUnitID == nil {
		return ""
	}
	return *p.HomeUnitID
}
