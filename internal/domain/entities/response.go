package entities

import "time"

// ResponseStatus represents the lifecycle state of a response
type ResponseStatus string

const (
	ResponseStatusActive   ResponseStatus = "ACTIVE"
	ResponseStatusArchived ResponseStatus = "ARCHIVED"
)

// Valid reports whether s is a known response status
func (s ResponseStatus) Valid() bool {
	return s == ResponseStatusActive || s == ResponseStatusArchived
}

// Response is a user's application to a service.
// ServiceOwnerID is loaded with the row so authorization checks use live owner data.
type Response struct {
	ID             string         `json:"id" db:"id"`
	ServiceID      string         `json:"serviceId" db:"service_id"`
	SenderID       string         `json:"senderId" db:"sender_id"`
	ServiceOwnerID string         `json:"-" db:"service_owner_id"`
	Status         ResponseStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}

// IsActive reports whether the response still awaits a decision
func (r *Response) IsActive() bool {
	return r.Status == ResponseStatusActive
}

// CanBeManagedBy reports whether userID is the sender or the service owner
func (r *Response) CanBeManagedBy(userID string) bool {
	return r.SenderID == userID || r.ServiceOwnerID == userID
}
