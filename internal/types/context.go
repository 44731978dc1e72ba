package types

import (
	"context"
)

// ContextKey namespaces request scoped values
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxUserID    ContextKey = "ctx_user_id"

	// used when the caller sends no tenant header and auth is off
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"

	HeaderRequestID = "X-Request-ID"
	HeaderTenantID  = "X-Tenant-ID"
	HeaderUserID    = "X-User-ID"
)

func stringValue(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

func GetTenantID(ctx context.Context) string  { return stringValue(ctx, CtxTenantID) }
func GetUserID(ctx context.Context) string    { return stringValue(ctx, CtxUserID) }
func GetRequestID(ctx context.Context) string { return stringValue(ctx, CtxRequestID) }

// WithCaller scopes ctx to the tenant and user a request acts for
func WithCaller(ctx context.Context, tenantID, userID string) context.Context {
	ctx = context.WithValue(ctx, CtxTenantID, tenantID)
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
