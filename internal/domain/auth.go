package domain

import "time"

// TokenIdentity is what a verified token proves about its holder.
type TokenIdentity struct {
	AdminID   string
	Domain    Domain
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is handed back to the caller on signup or login.
type IssuedToken struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
