package api

import (
	"encoding/json"
	"net/http"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DashboardHandler serves the tenant-scoped analytics read API. It only
// reads the tables the materializer writes; the tenant comes from the
// request context set by the tenant middleware.
type DashboardHandler struct {
	analytics ports.AnalyticsRepository
	logger    zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(analytics ports.AnalyticsRepository, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// statsResponse is the GET /stats response body.
type statsResponse struct {
	TotalRevenue    decimal.Decimal         `json:"totalRevenue"`
	ActiveCustomers int                     `json:"activeCustomers"`
	TopCustomers    []ports.CustomerSummary `json:"topCustomers"`
	SalesOverTime   []ports.DailySales      `json:"salesOverTime"`
}

// Stats handles GET /api/dashboard/stats with optional startDate/endDate
// query parameters.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := domain.TenantFromContext(ctx)
	if tenant == nil {
		http.Error(w, "Tenant not resolved", http.StatusUnauthorized)
		return
	}

	from, ok := parseDate(r.URL.Query().Get("startDate"))
	if !ok {
		http.Error(w, "Invalid startDate", http.StatusBadRequest)
		return
	}
	to, ok := parseDate(r.URL.Query().Get("endDate"))
	if !ok {
		http.Error(w, "Invalid endDate", http.StatusBadRequest)
		return
	}

	totalRevenue, err := h.analytics.TotalRevenue(ctx, tenant.ID, from, to)
	if err != nil {
		h.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute total revenue")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	activeCustomers, err := h.analytics.ActiveCustomerCount(ctx, tenant.ID, from, to)
	if err != nil {
		h.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to count active customers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	topCustomers, err := h.analytics.TopCustomersBySpend(ctx, tenant.ID, 5)
	if err != nil {
		h.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to list top customers")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	salesOverTime, err := h.analytics.SalesByDay(ctx, tenant.ID, from, to)
	if err != nil {
		h.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute sales over time")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsResponse{
		TotalRevenue:    totalRevenue,
		ActiveCustomers: activeCustomers,
		TopCustomers:    topCustomers,
		SalesOverTime:   salesOverTime,
	})
}

// parseDate accepts RFC 3339 timestamps or plain dates. An empty value is
// valid and means unbounded.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
