package delivery

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockZoneStore struct {
	mock.Mock
}

func (m *MockZoneStore) GetByCode(ctx context.Context, code string) (*model.DeliveryZone, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryZone), args.Error(1)
}

func (m *MockZoneStore) ListActive(ctx context.Context) ([]model.DeliveryZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

var (
	mainland  = &model.DeliveryZone{Code: "lagos_mainland", Name: "Lagos Mainland", FlatFee: 3000, IsCovered: true, IsActive: true}
	uncovered = &model.DeliveryZone{Code: "outside_coverage", Name: "Outside Coverage", IsCovered: false, IsActive: true}
	retired   = &model.DeliveryZone{Code: "retired", Name: "Retired", FlatFee: 100, IsCovered: true, IsActive: false}
)

func TestCalculator_Calculate(t *testing.T) {
	ctx := context.Background()
	store := new(MockZoneStore)
	store.On("GetByCode", ctx, "lagos_mainland").Return(mainland, nil)
	store.On("GetByCode", ctx, "outside_coverage").Return(uncovered, nil)
	store.On("GetByCode", ctx, "retired").Return(retired, nil)
	store.On("GetByCode", ctx, "mars").Return(nil, nil)
	store.On("GetByCode", ctx, "broken").Return(nil, errors.New("timeout"))

	calc := NewCalculator(store, zerolog.Nop())

	t.Run("Covered zone adds flat fee", func(t *testing.T) {
		quote, err := calc.Calculate(ctx, "  Lagos_Mainland ", 46000)

		require.NoError(t, err)
		assert.Equal(t, StatusOK, quote.Status)
		assert.Equal(t, int64(3000), quote.DeliveryFee)
		assert.Equal(t, int64(49000), quote.GrandTotal)
	})

	t.Run("Zero subtotal is allowed", func(t *testing.T) {
		quote, err := calc.Calculate(ctx, "lagos_mainland", 0)

		require.NoError(t, err)
		assert.Equal(t, int64(3000), quote.GrandTotal)
	})

	t.Run("Uncovered zone soft fails", func(t *testing.T) {
		quote, err := calc.Calculate(ctx, "outside_coverage", 10000)

		require.ErrorIs(t, err, model.ErrZoneNotCovered)
		require.NotNil(t, quote)
		assert.Equal(t, StatusNotCovered, quote.Status)
		assert.Zero(t, quote.DeliveryFee)
		assert.Equal(t, int64(10000), quote.GrandTotal)

		var domainErr *model.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, model.KindBusinessRule, domainErr.Kind)
		assert.Equal(t, "outside_coverage", domainErr.Detail.(model.DeliveryZone).Code)
	})

	tests := []struct {
		name     string
		code     string
		subtotal int64
		expected error
	}{
		{name: "Blank code", code: "   ", subtotal: 100, expected: model.ErrZoneRequired},
		{name: "Negative subtotal", code: "lagos_mainland", subtotal: -1, expected: model.ErrInvalidSubtotal},
		{name: "Unknown zone", code: "mars", subtotal: 100, expected: model.ErrInvalidZone},
		{name: "Inactive zone", code: "retired", subtotal: 100, expected: model.ErrInvalidZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Calculate(ctx, tt.code, tt.subtotal)

			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, quote)
		})
	}

	t.Run("Store failure", func(t *testing.T) {
		_, err := calc.Calculate(ctx, "broken", 100)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load delivery zone")
	})
}

func TestCalculator_ListZones(t *testing.T) {
	ctx := context.Background()
	store := new(MockZoneStore)
	store.On("ListActive", ctx).Return([]model.DeliveryZone{*mainland, *uncovered}, nil)

	zones, err := NewCalculator(store, zerolog.Nop()).ListZones(ctx)

	require.NoError(t, err)
	assert.Len(t, zones, 2)
}
