package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/api"
	"shopify-ingest-layer/internal/infrastructure/repository"
	"shopify-ingest-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type dashboardFixture struct {
	handler *api.DashboardHandler
	tenant  *domain.Tenant
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	db, err := repository.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	logger := zerolog.Nop()
	tenants := application.NewTenantService(repository.NewBunTenantRepository(db), logger)
	tenant, err := tenants.Onboard(context.Background(), application.OnboardTenantInput{
		Name:       "Acme Outfitters",
		ShopDomain: "acme.myshopify.com",
		OwnerEmail: "owner@acme.test",
	})
	if err != nil {
		t.Fatalf("failed to onboard tenant: %v", err)
	}

	ingestion := application.NewIngestionService(repository.NewBunStore(db), logger)
	orders := []application.OrderInput{
		{ExternalID: "9001", Number: "#1001", TotalPrice: decimal.RequireFromString("100.00"), Currency: "USD",
			Customer: &application.CustomerInput{ExternalID: "c1", Email: "jane@acme.test", FirstName: "Jane", LastName: "Doe"}},
		{ExternalID: "9002", Number: "#1002", TotalPrice: decimal.RequireFromString("50.00"), Currency: "USD",
			Customer: &application.CustomerInput{ExternalID: "c1", Email: "jane@acme.test", FirstName: "Jane", LastName: "Doe"}},
		{ExternalID: "9003", Number: "#1003", TotalPrice: decimal.RequireFromString("75.50"), Currency: "USD",
			Customer: &application.CustomerInput{ExternalID: "c2", Email: "omar@acme.test", FirstName: "Omar", LastName: "Haddad"}},
	}
	for _, order := range orders {
		if err := ingestion.IngestOrder(context.Background(), tenant.ID, order); err != nil {
			t.Fatalf("failed to ingest order %s: %v", order.ExternalID, err)
		}
	}

	handler := api.NewDashboardHandler(repository.NewBunAnalyticsRepository(db), logger)
	return &dashboardFixture{handler: handler, tenant: tenant}
}

func (f *dashboardFixture) get(t *testing.T, target string, tenant *domain.Tenant) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if tenant != nil {
		r = r.WithContext(domain.WithTenant(r.Context(), tenant))
	}
	rec := httptest.NewRecorder()
	f.handler.Stats(rec, r)
	return rec
}

func TestDashboardHandler_Stats(t *testing.T) {
	fixture := newDashboardFixture(t)

	rec := fixture.get(t, "/api/dashboard/stats", fixture.tenant)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats struct {
		TotalRevenue    decimal.Decimal         `json:"totalRevenue"`
		ActiveCustomers int                     `json:"activeCustomers"`
		TopCustomers    []ports.CustomerSummary `json:"topCustomers"`
		SalesOverTime   []ports.DailySales      `json:"salesOverTime"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if want := decimal.RequireFromString("225.50"); !stats.TotalRevenue.Equal(want) {
		t.Fatalf("expected total revenue %s, got %s", want, stats.TotalRevenue)
	}
	if stats.ActiveCustomers != 2 {
		t.Fatalf("expected 2 active customers, got %d", stats.ActiveCustomers)
	}
	if len(stats.TopCustomers) != 2 {
		t.Fatalf("expected 2 top customers, got %d", len(stats.TopCustomers))
	}
	if top := stats.TopCustomers[0]; top.Email != "jane@acme.test" || top.OrdersCount != 2 {
		t.Fatalf("expected jane@acme.test with 2 orders on top, got %+v", top)
	}
	if len(stats.SalesOverTime) != 1 {
		t.Fatalf("expected all orders grouped into one day, got %d buckets", len(stats.SalesOverTime))
	}
	if !stats.SalesOverTime[0].Sales.Equal(decimal.RequireFromString("225.50")) {
		t.Fatalf("expected day bucket to carry full revenue, got %s", stats.SalesOverTime[0].Sales)
	}
}

func TestDashboardHandler_StatsWithoutTenantIsUnauthorized(t *testing.T) {
	fixture := newDashboardFixture(t)

	rec := fixture.get(t, "/api/dashboard/stats", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a resolved tenant, got %d", rec.Code)
	}
}

func TestDashboardHandler_StatsRejectsBadDates(t *testing.T) {
	fixture := newDashboardFixture(t)

	rec := fixture.get(t, "/api/dashboard/stats?startDate=yesterday", fixture.tenant)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable startDate, got %d", rec.Code)
	}
}

func TestDashboardHandler_StatsDateRangeExcludesOutsideOrders(t *testing.T) {
	fixture := newDashboardFixture(t)

	rec := fixture.get(t, "/api/dashboard/stats?startDate=2099-01-01", fixture.tenant)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		TotalRevenue    decimal.Decimal `json:"totalRevenue"`
		ActiveCustomers int             `json:"activeCustomers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !stats.TotalRevenue.IsZero() || stats.ActiveCustomers != 0 {
		t.Fatalf("expected empty stats for a future range, got %+v", stats)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	db, err := repository.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
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
	handler := api.NewAuthHandler(tenants, zerolog.Nop())

	post := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Login(rec, r)
		return rec
	}

	if rec := post(`{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", rec.Code)
	}
	if rec := post(`{"email": "nobody@acme.test"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", rec.Code)
	}

	rec := post(`{"email": "owner@acme.test"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["tenantId"] != tenant.ID || response["name"] != "Acme Outfitters" {
		t.Fatalf("unexpected login response: %v", response)
	}
}
