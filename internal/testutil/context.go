package testutil

import (
	"context"

	"github.com/flexprice/tariff/internal/types"
)

// SetupContext returns a request context for the default tenant and user
func SetupContext() context.Context {
	return SetupTenantContext(types.DefaultTenantID)
}

// SetupTenantContext returns a request context scoped to tenantID
func SetupTenantContext(tenantID string) context.Context {
	ctx := types.WithCaller(context.Background(), tenantID, types.DefaultUserID)
	return types.SetRequestID(ctx, types.GenerateUUID())
}
