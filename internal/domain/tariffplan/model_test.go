package tariffplan

import (
	"testing"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tier(threshold, price int64) Tier {
	return Tier{
		ThresholdLevel: decimal.NewFromInt(threshold),
		UnitPrice:      decimal.NewFromInt(price),
	}
}

func TestTierTableValidate(t *testing.T) {
	assert.NoError(t, TierTable{}.Validate())
	assert.NoError(t, TierTable{tier(10, 5), tier(20, 4)}.Validate())

	err := TierTable{tier(10, 5), tier(10, 4)}.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err), "duplicate thresholds")

	err = TierTable{tier(20, 5), tier(10, 4)}.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err), "descending thresholds")
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    *Plan
		checkFn func(error) bool
	}{
		{
			name: "flat without tiers",
			plan: &Plan{EstimateMethod: types.ESTIMATE_METHOD_FLAT},
		},
		{
			name:    "bracket without tiers",
			plan:    &Plan{EstimateMethod: types.ESTIMATE_METHOD_BRACKET},
			checkFn: ierr.IsMissingTierData,
		},
		{
			name:    "unknown method",
			plan:    &Plan{EstimateMethod: "mass"},
			checkFn: ierr.IsMisconfiguredPlan,
		},
		{
			name:    "nil plan",
			plan:    nil,
			checkFn: ierr.IsValidation,
		},
		{
			name: "progressive with unordered tiers",
			plan: &Plan{
				EstimateMethod: types.ESTIMATE_METHOD_PROGRESSIVE,
				Tiers:          TierTable{tier(30, 3), tier(10, 5)},
			},
			checkFn: ierr.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.checkFn == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, tt.checkFn(err), "unexpected error: %v", err)
		})
	}
}

func TestTierTableScanValue(t *testing.T) {
	tiers := TierTable{tier(10, 5), tier(30, 3)}
	value, err := tiers.Value()
	require.NoError(t, err)

	var scanned TierTable
	require.NoError(t, scanned.Scan(value))
	require.Len(t, scanned, 2)
	assert.True(t, scanned[1].ThresholdLevel.Equal(decimal.NewFromInt(30)))

	var empty TierTable
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
	assert.Error(t, empty.Scan(42))
}

func TestPlanCopy(t *testing.T) {
	p := &Plan{
		ID:       "tplan_1",
		Tiers:    TierTable{tier(10, 5)},
		Metadata: JSONBMetadata{"k": "v"},
	}
	cp := p.Copy()
	cp.Tiers[0].UnitPrice = decimal.NewFromInt(99)
	cp.Metadata["k"] = "changed"

	assert.True(t, p.Tiers[0].UnitPrice.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "v", p.Metadata["k"])
}
