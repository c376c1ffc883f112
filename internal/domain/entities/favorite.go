package entities

import "time"

// Favorite is a user's bookmark of a service. The pair is its identity.
type Favorite struct {
	UserID    string    `json:"userId" db:"user_id"`
	ServiceID string    `json:"-" db:"service_id"`
	Service   *Service  `json:"service,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
