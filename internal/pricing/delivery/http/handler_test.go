package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/tair/repair-manager/internal/catalog/domain"
	catalogrepo "github.com/tair/repair-manager/internal/catalog/repository"
	"github.com/tair/repair-manager/internal/pricing/domain"
	"github.com/tair/repair-manager/internal/pricing/repository"
	"github.com/tair/repair-manager/internal/pricing/usecase"
	"github.com/tair/repair-manager/internal/testutil"
	userdomain "github.com/tair/repair-manager/internal/user/domain"
	"github.com/tair/repair-manager/pkg/auth"
	"github.com/tair/repair-manager/pkg/cache"
)

func TestPricingEndpoints(t *testing.T) {
	models := append(catalog.Models(), domain.Models()...)
	db := testutil.SetupTestDB(t, models...)
	service := catalog.Service{Name: "Screen repair"}
	require.NoError(t, db.Create(&service).Error)

	tokens := auth.NewTokenManager(auth.Config{Secret: "test-secret", TTL: time.Hour})
	svc := usecase.NewService(repository.NewGormRepository(db), catalogrepo.NewGormRepository(db), cache.New(nil, usecase.CachePrefix), time.Minute, nil)
	router := mux.NewRouter()
	NewPricingHandler(svc, tokens, nil).RegisterRoutes(router)

	token, _, err := tokens.GenerateToken(auth.Claims{UserID: 1, Username: "manager", Permissions: []string{userdomain.PermManageCatalog}})
	require.NoError(t, err)
	bearer := "Bearer " + token

	body := map[string]interface{}{
		"item_type":       "service",
		"service_id":      service.ID,
		"base_price":      "80.00",
		"discount_amount": "20",
		"effective_date":  time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	}
	w := testutil.DoRequest(t, router, http.MethodPost, "/api/catalog-pricing", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(t, router, http.MethodPost, "/api/catalog-pricing", body, "Authorization", bearer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = testutil.DoRequest(t, router, http.MethodGet, "/api/catalog-pricing/item/Service/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got domain.CatalogPricing
	testutil.ParseResponse(t, w, &got)
	assert.Equal(t, "60", got.EffectivePrice.String())

	asOf := time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339)
	w = testutil.DoRequest(t, router, http.MethodGet, "/api/catalog-pricing/item/Service/1?as_of="+asOf, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoRequest(t, router, http.MethodGet, "/api/catalog-pricing/item/Widget/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"invalid item type"`)

	w = testutil.DoRequest(t, router, http.MethodGet, "/api/catalog-pricing?item_type=Service", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.CatalogPricing
	testutil.ParseResponse(t, w, &list)
	assert.Len(t, list, 1)
}
