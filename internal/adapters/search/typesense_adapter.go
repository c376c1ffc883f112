package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	tsclient "github.com/moysha/servicecatalog/internal/infrastructure/clients/typesense"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

const defaultPerPage = 20

// TypesenseAdapter implements catalog search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ServiceSearchIndex
var _ repositories.ServiceSearchIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a service document
func (a *TypesenseAdapter) Index(ctx context.Context, service *entities.Service) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, serviceDocument(service))
	if err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to index service %s", service.ID), err)
	}
	return nil
}

// Delete removes a service from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to delete service %s from index", id), err)
	}
	return nil
}

// Search runs the filter against the index. The title clause becomes the
// full-text query; every other clause becomes part of filter_by.
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	params, err := searchParams(filter, page)
	if err != nil {
		return entities.Page[*entities.Service]{}, err
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return entities.Page[*entities.Service]{}, apperrors.NewExternalError("failed to search services", err)
	}

	var services []*entities.Service
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			services = append(services, documentService(*hit.Document))
		}
	}

	var total int64
	if result.Found != nil {
		total = int64(*result.Found)
	}
	return entities.NewPage(services, total, page), nil
}

var indexSortFields = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
}

// searchParams maps the page onto Typesense's page numbers, so the offset
// has to fall on a page boundary.
func searchParams(filter repositories.ServiceFilter, page entities.PageRequest) (*api.SearchCollectionParams, error) {
	perPage := page.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page.Offset%perPage != 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("offset %d is not a multiple of the page size %d", page.Offset, perPage))
	}

	q := "*"
	if title := strings.TrimSpace(filter.TitleLike); title != "" {
		q = title
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("title"),
		Page:    pointer.Int(page.Offset/perPage + 1),
		PerPage: pointer.Int(perPage),
	}

	if expr := filterBy(filter.Clauses()); expr != "" {
		params.FilterBy = pointer.String(expr)
	}

	var sorts []string
	for _, s := range page.Sort {
		if field, ok := indexSortFields[s.Field]; ok {
			dir := "asc"
			if s.Desc {
				dir = "desc"
			}
			sorts = append(sorts, field+":"+dir)
		}
	}
	if len(sorts) == 0 {
		sorts = append(sorts, "created_at:desc")
	}
	params.SortBy = pointer.String(strings.Join(sorts, ","))

	return params, nil
}

// filterBy renders clauses as a Typesense filter_by expression
func filterBy(clauses []repositories.Clause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c.Op == repositories.OpContainsFold {
			continue
		}

		var op string
		switch c.Op {
		case repositories.OpEqual:
			op = ":="
		case repositories.OpGreaterOrEqual:
			op = ":>="
		case repositories.OpLessOrEqual:
			op = ":<="
		}
		parts = append(parts, string(c.Field)+op+filterValue(c.Op, c.Value))
	}
	return strings.Join(parts, " && ")
}

func filterValue(op repositories.ClauseOp, v any) string {
	switch val := v.(type) {
	case string:
		return "`" + val + "`"
	case entities.ServiceType:
		return "`" + string(val) + "`"
	case entities.ServiceStatus:
		return "`" + string(val) + "`"
	case decimal.Decimal:
		return val.StringFixed(entities.PriceScale)
	case time.Time:
		return fmt.Sprintf("%d", timeBound(op, val))
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprint(val)
	}
}

// created_at is indexed in microseconds, the precision PostgreSQL keeps.
// Lower bounds round up and upper bounds round down so no bound gets looser.
func timeBound(op repositories.ClauseOp, t time.Time) int64 {
	micros := t.UnixMicro()
	if op == repositories.OpGreaterOrEqual && t.Nanosecond()%int(time.Microsecond) != 0 {
		micros++
	}
	return micros
}

func serviceDocument(s *entities.Service) map[string]interface{} {
	doc := map[string]interface{}{
		"id":          s.ID,
		"title":       s.Title,
		"description": s.Description,
		"owner_id":    s.OwnerID,
		"category_id": s.CategoryID,
		"type":        string(s.Type),
		"status":      string(s.Status),
		"price":       s.Price.InexactFloat64(),
		"barter":      s.Barter,
		"created_at":  s.CreatedAt.UnixMicro(),
	}
	if s.CategoryName != "" {
		doc["category_name"] = s.CategoryName
	}
	if s.Place != "" {
		doc["place"] = s.Place
	}
	return doc
}

func documentService(doc map[string]interface{}) *entities.Service {
	s := &entities.Service{}
	s.ID, _ = doc["id"].(string)
	s.Title, _ = doc["title"].(string)
	s.Description, _ = doc["description"].(string)
	s.OwnerID, _ = doc["owner_id"].(string)
	s.CategoryID, _ = doc["category_id"].(string)
	s.CategoryName, _ = doc["category_name"].(string)
	s.Place, _ = doc["place"].(string)
	s.Barter, _ = doc["barter"].(bool)

	if v, ok := doc["type"].(string); ok {
		s.Type = entities.ServiceType(v)
	}
	if v, ok := doc["status"].(string); ok {
		s.Status = entities.ServiceStatus(v)
	}
	if v, ok := doc["price"].(float64); ok {
		s.Price = entities.NormalizePrice(decimal.NewFromFloat(v))
	}
	if v, ok := doc["created_at"].(float64); ok {
		s.CreatedAt = time.UnixMicro(int64(v)).UTC()
	}
	return s
}
