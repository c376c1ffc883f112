package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/api/handlers"
	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

type stubCatalog struct {
	created     *services.CreateServiceInput
	updated     *services.UpdateServiceInput
	filter      repositories.ServiceFilter
	page        entities.PageRequest
	deletedBy   string
	suggestArgs []interface{}
	err         error
}

func (s *stubCatalog) Create(ctx context.Context, input services.CreateServiceInput) (*entities.Service, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Service{ID: "svc-1", OwnerID: input.OwnerID, Title: input.Title, Price: input.Price}, nil
}

func (s *stubCatalog) Update(ctx context.Context, serviceID string, input services.UpdateServiceInput) (*entities.Service, error) {
	s.updated = &input
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Service{ID: serviceID}, nil
}

func (s *stubCatalog) ChangeStatus(ctx context.Context, serviceID, requesterID string, status entities.ServiceStatus) (*entities.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Service{ID: serviceID, Status: status}, nil
}

func (s *stubCatalog) ChangeOwnerServicesStatus(ctx context.Context, ownerID, requesterID string, status entities.ServiceStatus) ([]*entities.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*entities.Service{{ID: "svc-1", OwnerID: ownerID, Status: status}}, nil
}

func (s *stubCatalog) Delete(ctx context.Context, serviceID, requesterID string) error {
	s.deletedBy = requesterID
	return s.err
}

func (s *stubCatalog) GetByID(ctx context.Context, serviceID string) (*entities.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Service{ID: serviceID}, nil
}

func (s *stubCatalog) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	s.filter = filter
	s.page = page
	if s.err != nil {
		return entities.Page[*entities.Service]{}, s.err
	}
	return entities.NewPage([]*entities.Service{{ID: "svc-1"}}, 1, page), nil
}

func (s *stubCatalog) Suggest(ctx context.Context, query string, limit int) ([]*entities.Service, error) {
	s.suggestArgs = []interface{}{query, limit}
	return []*entities.Service{{ID: "svc-1", Title: "Guitar lessons"}}, nil
}

func serveService(handler http.HandlerFunc, method, pattern, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+pattern, handler)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServiceHandler_CreateService(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	body := `{"ownerId":"u-1","categoryId":"c-1","title":"Guitar lessons","description":"Weekly","type":"OFFER","price":"12.5"}`
	w := serveService(h.CreateService, "POST", "/api/services", "/api/services", body, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, catalog.created)
	assert.Equal(t, "u-1", catalog.created.OwnerID)
	assert.Equal(t, entities.ServiceTypeOffer, catalog.created.Type)
	assert.True(t, decimal.RequireFromString("12.5").Equal(catalog.created.Price))
	assert.Nil(t, catalog.created.Barter)
}

func TestServiceHandler_CreateService_HeaderWinsOverBody(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	body := `{"ownerId":"u-1","categoryId":"c-1","title":"t","description":"d","type":"ORDER","price":0}`
	w := serveService(h.CreateService, "POST", "/api/services", "/api/services", body,
		map[string]string{handlers.UserIDHeader: "u-2"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u-2", catalog.created.OwnerID)
}

func TestServiceHandler_CreateService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing owner", `{"categoryId":"c-1","title":"t","description":"d","type":"OFFER","price":1}`, "ownerId is required"},
		{"blank title", `{"ownerId":"u","categoryId":"c-1","title":"  ","description":"d","type":"OFFER","price":1}`, "title must not be blank"},
		{"bad type", `{"ownerId":"u","categoryId":"c-1","title":"t","description":"d","type":"SWAP","price":1}`, "type must be OFFER or ORDER"},
		{"negative price", `{"ownerId":"u","categoryId":"c-1","title":"t","description":"d","type":"OFFER","price":-1}`, "price must not be negative"},
		{"missing price", `{"ownerId":"u","categoryId":"c-1","title":"t","description":"d","type":"OFFER"}`, "price is required"},
		{"long title", `{"ownerId":"u","categoryId":"c-1","title":"` + strings.Repeat("a", 256) + `","description":"d","type":"OFFER","price":1}`, "title must be at most 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &stubCatalog{}
			h := handlers.NewServiceHandler(catalog, testPaging)

			w := serveService(h.CreateService, "POST", "/api/services", "/api/services", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decodeError(t, w).Message)
			assert.Nil(t, catalog.created)
		})
	}
}

func TestServiceHandler_GetService_NotFound(t *testing.T) {
	catalog := &stubCatalog{err: apperrors.NewNotFoundErrorf("Service not found: %s", "svc-9")}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.GetService, "GET", "/api/services/{serviceId}", "/api/services/svc-9", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, 404, body.Status)
	assert.Equal(t, "Not Found", body.Error)
	assert.Equal(t, "Service not found: svc-9", body.Message)
	assert.NotEmpty(t, body.Timestamp)
}

func TestServiceHandler_UpdateService_Sparse(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.UpdateService, "PUT", "/api/services/{serviceId}", "/api/services/svc-1",
		`{"requesterId":"u-1","title":"New title"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", catalog.updated.RequesterID)
	require.NotNil(t, catalog.updated.Title)
	assert.Equal(t, "New title", *catalog.updated.Title)
	assert.Nil(t, catalog.updated.Description)
	assert.Nil(t, catalog.updated.Price)
}

func TestServiceHandler_UpdateService_BusinessRule(t *testing.T) {
	catalog := &stubCatalog{err: apperrors.NewBadRequestError("Only owner can update the service")}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.UpdateService, "PUT", "/api/services/{serviceId}", "/api/services/svc-1",
		`{"requesterId":"u-2","title":"x"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only owner can update the service", decodeError(t, w).Message)
}

func TestServiceHandler_ChangeOwnerServicesStatus(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.ChangeOwnerServicesStatus, "PATCH", "/api/users/{userId}/services/status",
		"/api/users/u-1/services/status", `{"requesterId":"u-1","status":"ARCHIVED"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var changed []entities.Service
	require.NoError(t, json.NewDecoder(w.Body).Decode(&changed))
	require.Len(t, changed, 1)
	assert.Equal(t, entities.ServiceStatusArchived, changed[0].Status)
}

func TestServiceHandler_DeleteService_RequesterFromQuery(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.DeleteService, "DELETE", "/api/services/{serviceId}", "/api/services/svc-1?requesterId=u-1", "", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-1", catalog.deletedBy)
}

func TestServiceHandler_DeleteService_MissingRequester(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.DeleteService, "DELETE", "/api/services/{serviceId}", "/api/services/svc-1", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "requesterId is required", decodeError(t, w).Message)
}

func TestServiceHandler_SearchServices(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	body := `{"categoryId":"c-1","type":"OFFER","titleLike":"gui","minPrice":"5","barterOnly":true}`
	w := serveService(h.SearchServices, "POST", "/api/services/search", "/api/services/search?limit=5&sort=price,desc", body, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-1", catalog.filter.CategoryID)
	assert.Equal(t, entities.ServiceTypeOffer, catalog.filter.Type)
	assert.Equal(t, "gui", catalog.filter.TitleLike)
	require.NotNil(t, catalog.filter.MinPrice)
	assert.True(t, catalog.filter.MinPrice.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, catalog.filter.BarterOnly)
	assert.True(t, *catalog.filter.BarterOnly)
	assert.Equal(t, 5, catalog.page.Limit)
	assert.Equal(t, []entities.SortOrder{{Field: "price", Desc: true}}, catalog.page.Sort)

	var page entities.Page[*entities.Service]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestServiceHandler_SearchServices_EmptyBody(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.SearchServices, "POST", "/api/services/search", "/api/services/search", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repositories.ServiceFilter{}, catalog.filter)
}

func TestServiceHandler_SearchServices_InvalidStatus(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.SearchServices, "POST", "/api/services/search", "/api/services/search", `{"status":"DELETED"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceHandler_InternalErrorIsMasked(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("pq: connection refused")}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.GetService, "GET", "/api/services/{serviceId}", "/api/services/svc-1", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w).Message)
}

func TestServiceHandler_SuggestServices(t *testing.T) {
	catalog := &stubCatalog{}
	h := handlers.NewServiceHandler(catalog, testPaging)

	w := serveService(h.SuggestServices, "GET", "/api/services/suggest", "/api/services/suggest?q=gui&limit=500", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"gui", 100}, catalog.suggestArgs)

	var body struct {
		Suggestions []entities.Service `json:"suggestions"`
		Count       int                `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
}

func TestServiceHandler_SuggestServices_BadLimit(t *testing.T) {
	h := handlers.NewServiceHandler(&stubCatalog{}, testPaging)

	w := serveService(h.SuggestServices, "GET", "/api/services/suggest", "/api/services/suggest?q=x&limit=-3", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
