package entities

import "time"

const (
	FeedbackMinRate         = 1
	FeedbackMaxRate         = 5
	FeedbackReviewMaxLength = 5000
)

// Feedback is a one-time rating a sender leaves for a service
type Feedback struct {
	ID             string    `json:"id" db:"id"`
	ServiceID      string    `json:"serviceId" db:"service_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	ServiceOwnerID string    `json:"-" db:"service_owner_id"`
	Rate           int       `json:"rate" db:"rate"`
	Review         string    `json:"review,omitempty" db:"review"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// ValidRate reports whether rate lies in the accepted range
func ValidRate(rate int) bool {
	return rate >= FeedbackMinRate && rate <= FeedbackMaxRate
}
