package entities

import "time"

// UserRole mirrors the role stored by the user directory
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is the read-only view of the user directory this service relies on
type User struct {
	ID         string     `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	Role       UserRole   `json:"role" db:"role"`
	BannedTill *time.Time `json:"bannedTill,omitempty" db:"banned_till"`
}
