package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/ports"

	"github.com/rs/zerolog"
)

// TenantService is the sole multi-tenancy boundary: it maps an inbound
// identifier (explicit tenant id or shop domain) to exactly one tenant.
type TenantService struct {
	tenantRepo ports.TenantRepository
	logger     zerolog.Logger
}

// NewTenantService creates a new tenant service.
func NewTenantService(tenantRepo ports.TenantRepository, logger zerolog.Logger) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// Resolve looks up a tenant by explicit id first, then by shop domain.
// It returns domain.ErrTenantNotFound when neither identifier resolves or
// both are absent; callers must not leak more than that boolean.
func (s *TenantService) Resolve(ctx context.Context, tenantID, shopDomain string) (*domain.Tenant, error) {
	if tenantID != "" {
		tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant by id: %w", err)
		}
		if tenant != nil {
			return tenant, nil
		}
	}

	if shopDomain != "" {
		tenant, err := s.tenantRepo.GetByShopDomain(ctx, shopDomain)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tenant by shop domain: %w", err)
		}
		if tenant != nil {
			return tenant, nil
		}
	}

	return nil, domain.ErrTenantNotFound
}

// Login resolves a tenant by its owner's email address.
func (s *TenantService) Login(ctx context.Context, email string) (*domain.Tenant, error) {
	tenant, err := s.tenantRepo.GetByOwnerEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tenant by email: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

// OnboardTenantInput represents input for onboarding a new tenant.
type OnboardTenantInput struct {
	Name          string
	ShopDomain    string
	OwnerEmail    string
	WebhookSecret string
}

// Onboard creates a tenant for a storefront. If the shop domain is already
// registered the existing tenant is returned unchanged. An empty webhook
// secret is replaced with a generated one.
func (s *TenantService) Onboard(ctx context.Context, input OnboardTenantInput) (*domain.Tenant, error) {
	existing, err := s.tenantRepo.GetByShopDomain(ctx, input.ShopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing tenant: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("shopDomain", input.ShopDomain).
			Str("tenantId", existing.ID).
			Msg("Tenant already exists, returning existing record")
		return existing, nil
	}

	secret := input.WebhookSecret
	if secret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return nil, fmt.Errorf("failed to generate webhook secret: %w", err)
		}
		secret = hex.EncodeToString(secretBytes)
	}

	tenant := &domain.Tenant{
		Name:          input.Name,
		ShopDomain:    input.ShopDomain,
		OwnerEmail:    input.OwnerEmail,
		WebhookSecret: secret,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create tenant")
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Info().
		Str("tenantId", tenant.ID).
		Str("shopDomain", tenant.ShopDomain).
		Msg("Onboarded new tenant")

	return tenant, nil
}
