package repositories

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// ServiceField names a searchable column of the catalog
type ServiceField string

const (
	ServiceFieldOwnerID    ServiceField = "owner_id"
	ServiceFieldCategoryID ServiceField = "category_id"
	ServiceFieldType       ServiceField = "type"
	ServiceFieldStatus     ServiceField = "status"
	ServiceFieldTitle      ServiceField = "title"
	ServiceFieldPrice      ServiceField = "price"
	ServiceFieldBarter     ServiceField = "barter"
	ServiceFieldCreatedAt  ServiceField = "created_at"
)

// ClauseOp is the comparison a clause applies
type ClauseOp string

const (
	OpEqual          ClauseOp = "eq"
	OpContainsFold   ClauseOp = "contains_fold"
	OpGreaterOrEqual ClauseOp = "gte"
	OpLessOrEqual    ClauseOp = "lte"
)

// Clause is one typed predicate of a catalog search.
// Value holds a string, entities.ServiceType, entities.ServiceStatus,
// decimal.Decimal, time.Time or bool depending on Field.
type Clause struct {
	Field ServiceField
	Op    ClauseOp
	Value any
}

// ServiceFilter describes a catalog search. Every zero field imposes no
// constraint; pointers distinguish "absent" from a meaningful zero value.
type ServiceFilter struct {
	OwnerID       string
	CategoryID    string
	Type          entities.ServiceType
	Status        entities.ServiceStatus
	TitleLike     string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	BarterOnly    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Clauses returns the conjunction the filter stands for, one clause per
// present field. An empty result matches the whole catalog.
func (f ServiceFilter) Clauses() []Clause {
	clauses := make([]Clause, 0, 10)

	if f.OwnerID != "" {
		clauses = append(clauses, Clause{Field: ServiceFieldOwnerID, Op: OpEqual, Value: f.OwnerID})
	}
	if f.CategoryID != "" {
		clauses = append(clauses, Clause{Field: ServiceFieldCategoryID, Op: OpEqual, Value: f.CategoryID})
	}
	if f.Type != "" {
		clauses = append(clauses, Clause{Field: ServiceFieldType, Op: OpEqual, Value: f.Type})
	}
	if f.Status != "" {
		clauses = append(clauses, Clause{Field: ServiceFieldStatus, Op: OpEqual, Value: f.Status})
	}
	if title := strings.TrimSpace(f.TitleLike); title != "" {
		clauses = append(clauses, Clause{Field: ServiceFieldTitle, Op: OpContainsFold, Value: title})
	}
	if f.MinPrice != nil {
		clauses = append(clauses, Clause{Field: ServiceFieldPrice, Op: OpGreaterOrEqual, Value: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, Clause{Field: ServiceFieldPrice, Op: OpLessOrEqual, Value: *f.MaxPrice})
	}
	// barter=false is "don't care", not "only non-barter"
	if f.BarterOnly != nil && *f.BarterOnly {
		clauses = append(clauses, Clause{Field: ServiceFieldBarter, Op: OpEqual, Value: true})
	}
	if f.CreatedAfter != nil {
		clauses = append(clauses, Clause{Field: ServiceFieldCreatedAt, Op: OpGreaterOrEqual, Value: *f.CreatedAfter})
	}
	if f.CreatedBefore != nil {
		clauses = append(clauses, Clause{Field: ServiceFieldCreatedAt, Op: OpLessOrEqual, Value: *f.CreatedBefore})
	}

	return clauses
}

// Matches evaluates the clause against a loaded service.
// Suggest uses it to hold index hits to the same rules as the SQL path.
func (c Clause) Matches(s *entities.Service) bool {
	switch c.Field {
	case ServiceFieldOwnerID:
		return s.OwnerID == c.Value.(string)
	case ServiceFieldCategoryID:
		return s.CategoryID == c.Value.(string)
	case ServiceFieldType:
		return s.Type == c.Value.(entities.ServiceType)
	case ServiceFieldStatus:
		return s.Status == c.Value.(entities.ServiceStatus)
	case ServiceFieldTitle:
		return strings.Contains(strings.ToLower(s.Title), strings.ToLower(c.Value.(string)))
	case ServiceFieldBarter:
		return s.Barter == c.Value.(bool)
	case ServiceFieldPrice:
		bound := c.Value.(decimal.Decimal)
		if c.Op == OpGreaterOrEqual {
			return s.Price.GreaterThanOrEqual(bound)
		}
		return s.Price.LessThanOrEqual(bound)
	case ServiceFieldCreatedAt:
		bound := c.Value.(time.Time)
		if c.Op == OpGreaterOrEqual {
			return !s.CreatedAt.Before(bound)
		}
		return !s.CreatedAt.After(bound)
	}
	return false
}

// Matches reports whether a service satisfies every clause of the filter
func (f ServiceFilter) Matches(s *entities.Service) bool {
	for _, clause := range f.Clauses() {
		if !clause.Matches(s) {
			return false
		}
	}
	return true
}
