package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/api"
	"shopify-ingest-layer/internal/infrastructure/middleware"
	"shopify-ingest-layer/internal/infrastructure/repository"

	"github.com/rs/zerolog"
)

func newMiddlewareFixture(t *testing.T) (func(http.Handler) http.Handler, *domain.Tenant) {
	t.Helper()
	db, err := repository.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	tenants := application.NewTenantService(repository.NewBunTenantRepository(db), zerolog.Nop())
	tenant, err := tenants.Onboard(context.Background(), application.OnboardTenantInput{
		Name:       "Acme Outfitters",
		ShopDomain: "acme.myshopify.com",
		OwnerEmail: "owner@acme.test",
	})
	if err != nil {
		t.Fatalf("failed to onboard tenant: %v", err)
	}
	return middleware.TenantResolver(tenants, zerolog.Nop()), tenant
}

func TestTenantResolver_InjectsTenantByID(t *testing.T) {
	resolver, tenant := newMiddlewareFixture(t)

	var seen *domain.Tenant
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = domain.TenantFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	r.Header.Set("X-Tenant-ID", tenant.ID)
	rec := httptest.NewRecorder()
	resolver(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != tenant.ID {
		t.Fatalf("expected tenant %s in request context, got %+v", tenant.ID, seen)
	}
}

func TestTenantResolver_ResolvesByShopDomain(t *testing.T) {
	resolver, tenant := newMiddlewareFixture(t)

	var seen *domain.Tenant
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = domain.TenantFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	r.Header.Set(api.HeaderShopDomain, "acme.myshopify.com")
	rec := httptest.NewRecorder()
	resolver(next).ServeHTTP(rec, r)

	if seen == nil || seen.ID != tenant.ID {
		t.Fatalf("expected tenant resolved from shop domain, got %+v", seen)
	}
}

func TestTenantResolver_RejectsUnidentifiedRequests(t *testing.T) {
	resolver, _ := newMiddlewareFixture(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	cases := []struct {
		name    string
		headers map[string]string
	}{
		{"no headers", nil},
		{"unknown tenant id", map[string]string{"X-Tenant-ID": "no-such-tenant"}},
		{"unknown shop domain", map[string]string{api.HeaderShopDomain: "stranger.myshopify.com"}},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		for key, value := range tc.headers {
			r.Header.Set(key, value)
		}
		rec := httptest.NewRecorder()
		resolver(next).ServeHTTP(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, rec.Code)
		}
	}
	if called {
		t.Fatalf("expected downstream handler to be skipped for unresolved tenants")
	}
}
