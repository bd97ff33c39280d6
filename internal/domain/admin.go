package domain

import "time"

// Admin is a domain-scoped administrator.
type Admin struct {
	ID           string
	Domain       Domain
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
