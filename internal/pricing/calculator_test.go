package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testConfig = Config{
	PlatformFeePercent: 0.05,
	HandlingFeePerItem: 10,
	TaxPercent:         0.18,
}

func TestCompute_Breakdown(t *testing.T) {
	items := []LineItem{
		{ItemID: "seat-a1", UnitPrice: 100},
		{ItemID: "seat-a2", UnitPrice: 100},
	}

	got := Compute(items, testConfig)

	assert.Equal(t, int64(200), got.Subtotal)
	assert.Equal(t, int64(10), got.PlatformFee)
	assert.Equal(t, int64(20), got.HandlingFee)
	// (10 + 20) * 0.18 = 5.4 rounds down to 5
	assert.Equal(t, int64(5), got.Tax)
	assert.Equal(t, int64(235), got.Total)
}

func TestCompute_EmptyCart(t *testing.T) {
	got := Compute(nil, testConfig)

	assert.Equal(t, Breakdown{}, got)

	got = Compute([]LineItem{}, testConfig)
	assert.Equal(t, Breakdown{}, got)
}

func TestCompute_RoundsHalfUp(t *testing.T) {
	// 250 * 0.05 = 12.5 must round to 13, not 12
	items := []LineItem{
		{ItemID: "tier-1", UnitPrice: 125},
		{ItemID: "tier-2", UnitPrice: 125},
	}

	got := Compute(items, testConfig)

	assert.Equal(t, int64(250), got.Subtotal)
	assert.Equal(t, int64(13), got.PlatformFee)
	// (13 + 20) * 0.18 = 5.94 rounds to 6
	assert.Equal(t, int64(6), got.Tax)
	assert.Equal(t, int64(250+13+20+6), got.Total)
}

func TestCompute_HandlingFeeIsExact(t *testing.T) {
	items := []LineItem{
		{ItemID: "a", UnitPrice: 33},
		{ItemID: "b", UnitPrice: 33},
		{ItemID: "c", UnitPrice: 33},
	}
	cfg := Config{HandlingFeePerItem: 7}

	got := Compute(items, cfg)

	assert.Equal(t, int64(21), got.HandlingFee)
	assert.Equal(t, int64(0), got.PlatformFee)
	assert.Equal(t, int64(0), got.Tax)
	assert.Equal(t, int64(99+21), got.Total)
}

func TestCompute_Deterministic(t *testing.T) {
	items := []LineItem{
		{ItemID: "seat-b4", UnitPrice: 799},
		{ItemID: "seat-b5", UnitPrice: 799},
		{ItemID: "tier-ga", UnitPrice: 249},
	}

	first := Compute(items, testConfig)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Compute(items, testConfig))
	}
}

func TestCompute_ZeroPercents(t *testing.T) {
	items := []LineItem{{ItemID: "x", UnitPrice: 500}}

	got := Compute(items, Config{})

	assert.Equal(t, int64(500), got.Subtotal)
	assert.Equal(t, int64(500), got.Total)
}

func TestOrganizerCredit(t *testing.T) {
	items := []LineItem{
		{ItemID: "seat-a1", UnitPrice: 100},
		{ItemID: "seat-a2", UnitPrice: 100},
	}

	b := Compute(items, testConfig)

	// organizer receives subtotal minus the platform cut only
	assert.Equal(t, int64(190), OrganizerCredit(b))
}
