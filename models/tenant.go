package models

// TenantContext is resolved from request headers by middleware and passed on
// every service call. Tenant/user provisioning lives outside this service.
type TenantContext struct {
	TenantID string
	UserID   string
}
