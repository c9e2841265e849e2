package pricing

import (
	"context"
	"testing"

	"freightquote/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against the seed data in migrations/0001_init.sql.
func TestStore_Seed(t *testing.T) {
	store := NewStore(testutil.DB(t))
	ctx := context.Background()

	rate, err := store.GetRate(ctx, VehicleTruck)
	require.NoError(t, err)
	assertDec(t, "180", rate.BaseFare)
	assert.Equal(t, "GBP", rate.Currency)

	_, err = store.GetRate(ctx, VehicleType("hovercraft"))
	assert.ErrorIs(t, err, ErrRateNotFound)

	rules, err := store.ActiveRules(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.True(t, r.IsActive, r.ID)
	}

	ds, err := store.DiscountsByCustomer(ctx, "cust-global")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "Global Logistics Ltd", ds[0].CustomerName)
	assert.Equal(t, TierGold, ds[0].ContractTier)
	require.Len(t, ds[0].VolumeTiers, 4)
	assertDec(t, "15", ds[0].VolumeTiers[3].DiscountValue)
}

func TestStore_ToggleActive(t *testing.T) {
	store := NewStore(testutil.DB(t))
	ctx := context.Background()

	require.NoError(t, store.SetRuleActive(ctx, "hazardous", false))
	t.Cleanup(func() { _ = store.SetRuleActive(context.Background(), "hazardous", true) })

	rules, err := store.ActiveRules(ctx)
	require.NoError(t, err)
	for _, r := range rules {
		assert.NotEqual(t, "hazardous", r.ID)
	}
	assert.ErrorIs(t, store.SetRuleActive(ctx, "missing", true), ErrRuleNotFound)

	require.NoError(t, store.SetDiscountActive(ctx, "disc-build-credit", false))
	t.Cleanup(func() { _ = store.SetDiscountActive(context.Background(), "disc-build-credit", true) })
	all, err := store.ListDiscounts(ctx)
	require.NoError(t, err)
	for _, d := range all {
		if d.ID == "disc-build-credit" {
			assert.False(t, d.IsActive)
		}
	}
	assert.ErrorIs(t, store.SetDiscountActive(ctx, "missing", true), ErrDiscountNotFound)
}

func TestStore_MonthlyVolumeCountsBookings(t *testing.T) {
	db := testutil.DB(t, "booking_state_events", "bookings")
	store := NewStore(db)
	ctx := context.Background()

	vol, err := store.MonthlyVolume(ctx, "cust-global")
	require.NoError(t, err)
	assert.Zero(t, vol)

	insert := func(id, customer, status, createdAt string) {
		t.Helper()
		_, err := db.Exec(ctx, `
            INSERT INTO bookings (id, customer_id, status, simulation, breakdown, final_price, currency, created_at)
            VALUES ($1, $2, $3, '{}', '{}', 100, 'GBP', `+createdAt+`)`, id, customer, status)
		require.NoError(t, err)
	}
	insert("b-1", "cust-global", "quoted", "NOW()")
	insert("b-2", "cust-global", "delivered", "NOW()")
	insert("b-3", "cust-global", "cancelled", "NOW()")
	insert("b-4", "cust-global", "delivered", "date_trunc('month', NOW()) - interval '1 day'")
	insert("b-5", "cust-fresh", "confirmed", "NOW()")

	vol, err = store.MonthlyVolume(ctx, "cust-global")
	require.NoError(t, err)
	assert.Equal(t, 2, vol)

	insert("b-6", "cust-global", "in_transit", "NOW()")
	vol, err = store.MonthlyVolume(ctx, "cust-global")
	require.NoError(t, err)
	assert.Equal(t, 3, vol)

	vol, err = store.MonthlyVolume(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, vol)
}
