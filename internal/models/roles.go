package models

// Role values stored on a profile.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Status values stored on a profile.
const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)
