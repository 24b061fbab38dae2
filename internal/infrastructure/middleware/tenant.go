package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/api"

	"github.com/rs/zerolog"
)

// TenantResolver resolves the tenant for tenant-scoped read routes from
// the X-Tenant-ID header (dashboard calls) or the shop domain header, and
// injects it into the request context. Unresolved requests get a 401 and
// nothing more; existence of other tenants must not leak.
func TenantResolver(tenants *application.TenantService, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tenantID := r.Header.Get("X-Tenant-ID")
			shopDomain := r.Header.Get(api.HeaderShopDomain)

			tenant, err := tenants.Resolve(ctx, tenantID, shopDomain)
			if errors.Is(err, domain.ErrTenantNotFound) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Tenant not found or unidentified",
				})
				return
			}
			if err != nil {
				logger.Error().Err(err).Msg("Tenant middleware failed to resolve tenant")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithTenant(ctx, tenant)))
		})
	}
}
