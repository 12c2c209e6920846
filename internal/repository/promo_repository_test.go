package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoRepository_ListActive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPromoRepository(pool, zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	rules := []*model.PromoRule{
		{Name: "open window", RuleType: model.PromoDiscount, DiscountType: model.DiscountFixed, DiscountValue: 100, BogoBuyQty: 1, BogoGetQty: 1, IsActive: true},
		{Name: "inside window", RuleType: model.PromoDiscount, DiscountType: model.DiscountPercent, DiscountValue: 5, BogoBuyQty: 1, BogoGetQty: 1, StartsAt: &past, EndsAt: &future, IsActive: true},
		{Name: "expired", RuleType: model.PromoDiscount, DiscountType: model.DiscountFixed, DiscountValue: 100, BogoBuyQty: 1, BogoGetQty: 1, EndsAt: &past, IsActive: true},
		{Name: "not started", RuleType: model.PromoDiscount, DiscountType: model.DiscountFixed, DiscountValue: 100, BogoBuyQty: 1, BogoGetQty: 1, StartsAt: &future, IsActive: true},
		{Name: "disabled", RuleType: model.PromoDiscount, DiscountType: model.DiscountFixed, DiscountValue: 100, BogoBuyQty: 1, BogoGetQty: 1, IsActive: false},
	}
	for _, r := range rules {
		require.NoError(t, repo.Create(ctx, r))
	}

	// Same created_at so the id tie-break decides the order.
	_, err := pool.Exec(ctx, `UPDATE promo_rules SET created_at = $1`, past)
	require.NoError(t, err)

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "inside window", active[0].Name)
	assert.Equal(t, "open window", active[1].Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(rules))
}
