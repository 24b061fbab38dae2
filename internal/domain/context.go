package domain

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const tenantContextKey contextKey = "tenant"

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFromContext returns the tenant stored in ctx, or nil if none was
// resolved. Handlers behind the tenant middleware can assume non-nil.
func TenantFromContext(ctx context.Context) *Tenant {
	tenant, _ := ctx.Value(tenantContextKey).(*Tenant)
	return tenant
}
