package models

import "strings"

// Profile is the application-facing identity of a user.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// IsBlocked reports whether the account has been blocked.
func (p Profile) IsBlocked() bool { return p.Status == StatusBlocked }

// DefaultProfile builds the profile created on first login: the email's
// local part as display name and the user role.
func DefaultProfile(id, email string) Profile {
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return Profile{ID: id, Name: name, Email: email, Role: RoleUser, Status: StatusActive}
}

// ResolveRole applies the designated admin email override.
func ResolveRole(p Profile, adminEmail string) Profile {
	if adminEmail != "" && strings.EqualFold(strings.TrimSpace(p.Email), strings.TrimSpace(adminEmail)) {
		p.Role = RoleAdmin
	}
	if p.Role != RoleAdmin {
		p.Role = RoleUser
	}
	if p.Status != StatusBlocked {
		p.Status = StatusActive
	}
	return p
}
