package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
)

// AuthHandler serves the tenant-lookup login endpoint. Authentication is
// a tenant lookup by owner email; anything stronger is out of scope here.
type AuthHandler struct {
	tenants *application.TenantService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tenants *application.TenantService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		tenants: tenants,
		logger:  logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	tenant, err := h.tenants.Login(r.Context(), body.Email)
	if errors.Is(err, domain.ErrTenantNotFound) {
		http.Error(w, "Invalid email or tenant not found", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Login failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"tenantId": tenant.ID,
		"name":     tenant.Name,
	})
}
