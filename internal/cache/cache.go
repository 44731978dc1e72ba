package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// PrefixTariffPlan namespaces stored plans; bump the version when Plan changes shape
const PrefixTariffPlan = "tariff_plan:v1:"

// Cache is the plan cache sitting in front of the repositories. Values are shared,
// callers store copies and must not mutate what Get returns.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set stores value; a zero expiration uses the configured TTL
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

// GenerateKey joins prefix and params with ':'
func GenerateKey(prefix string, params ...interface{}) string {
	parts := lo.Map(params, func(p interface{}, _ int) string {
		return fmt.Sprint(p)
	})
	return strings.Join(append([]string{strings.TrimSuffix(prefix, ":")}, parts...), ":")
}
