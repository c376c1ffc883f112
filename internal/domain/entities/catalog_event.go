package entities

import "time"

// CatalogEventType identifies what happened to a service
type CatalogEventType string

const (
	CatalogEventServiceCreated CatalogEventType = "service_created"
	CatalogEventServiceUpdated CatalogEventType = "service_updated"
	CatalogEventServiceDeleted CatalogEventType = "service_deleted"
)

// CatalogEvent is published after a committed catalog write
type CatalogEvent struct {
	ID         string           `json:"id"`
	Type       CatalogEventType `json:"type"`
	ServiceID  string           `json:"service_id"`
	OwnerID    string           `json:"owner_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}
