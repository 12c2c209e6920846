package coupon

import (
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDefinitionSet_AddAndGet(t *testing.T) {
	set := NewDefinitionSet(4)

	set.Add(model.Coupon{Code: " save10 ", DiscountType: model.DiscountPercent, DiscountValue: 10})
	set.Add(model.Coupon{Code: "FLAT500", DiscountType: model.DiscountFixed, DiscountValue: 500})

	assert.Equal(t, 2, set.Size())

	c, ok := set.Get("Save10")
	assert.True(t, ok)
	assert.Equal(t, "SAVE10", c.Code)

	_, ok = set.Get("missing")
	assert.False(t, ok)
}

func TestDefinitionSet_MergeAndAll(t *testing.T) {
	first := NewDefinitionSet(2)
	first.Add(model.Coupon{Code: "B", DiscountValue: 1})
	first.Add(model.Coupon{Code: "A", DiscountValue: 1})

	second := NewDefinitionSet(2)
	second.Add(model.Coupon{Code: "b", DiscountValue: 2})
	second.Add(model.Coupon{Code: "C", DiscountValue: 3})

	first.Merge(second)

	all := first.All()
	assert.Len(t, all, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].Code, all[1].Code, all[2].Code})
	assert.Equal(t, int64(2), all[1].DiscountValue, "merged definition replaces the original")
}
