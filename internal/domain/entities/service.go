package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType distinguishes what a listing asks for
type ServiceType string

const (
	ServiceTypeOffer ServiceType = "OFFER"
	ServiceTypeOrder ServiceType = "ORDER"
)

// Valid reports whether t is a known service type
func (t ServiceType) Valid() bool {
	return t == ServiceTypeOffer || t == ServiceTypeOrder
}

// ServiceStatus represents the visibility state of a listing
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "ACTIVE"
	ServiceStatusArchived ServiceStatus = "ARCHIVED"
)

// Valid reports whether s is a known service status
func (s ServiceStatus) Valid() bool {
	return s == ServiceStatusActive || s == ServiceStatusArchived
}

// Field limits shared by the HTTP boundary and the storage schema.
const (
	ServiceTitleMaxLength       = 255
	ServiceDescriptionMaxLength = 5000
	ServicePlaceMaxLength       = 255
	PriceScale                  = 2
)

// Service is a marketplace listing published by its owner.
// OwnerEmail and CategoryName are read-side projections joined at query time.
type Service struct {
	ID           string          `json:"id" db:"id"`
	OwnerID      string          `json:"ownerId" db:"owner_id"`
	OwnerEmail   string          `json:"ownerEmail,omitempty" db:"owner_email"`
	CategoryID   string          `json:"categoryId" db:"category_id"`
	CategoryName string          `json:"categoryName,omitempty" db:"category_name"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description" db:"description"`
	Type         ServiceType     `json:"type" db:"type"`
	Status       ServiceStatus   `json:"status" db:"status"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Barter       bool            `json:"barter" db:"barter"`
	Place        string          `json:"place,omitempty" db:"place"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// IsOwnedBy reports whether userID owns the service
func (s *Service) IsOwnedBy(userID string) bool {
	return s.OwnerID == userID
}

// NormalizePrice rounds a price to the stored scale
func NormalizePrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PriceScale)
}
