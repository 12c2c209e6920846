package seed

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

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) List(ctx context.Context, category string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductStore) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type MockZoneStore struct {
	mock.Mock
}

func (m *MockZoneStore) Upsert(ctx context.Context, zone *model.DeliveryZone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, paths []string) (int, error) {
	args := m.Called(ctx, paths)
	return args.Int(0), args.Error(1)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	files := []string{"data/coupons/launch.csv.gz"}

	t.Run("Empty store", func(t *testing.T) {
		products := new(MockProductStore)
		zones := new(MockZoneStore)
		importer := new(MockImporter)

		var zoneCodes []string
		zones.On("Upsert", ctx, mock.Anything).Run(func(args mock.Arguments) {
			zoneCodes = append(zoneCodes, args.Get(1).(*model.DeliveryZone).Code)
		}).Return(nil)
		products.On("List", ctx, "", 1, 0).Return(nil, nil)
		products.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)
		importer.On("Import", ctx, files).Return(3, nil)

		summary, err := New(products, zones, importer, zerolog.Nop()).Run(ctx, files)

		require.NoError(t, err)
		assert.Equal(t, Summary{Products: 8, Zones: 4, Coupons: 3}, summary)
		assert.Equal(t, []string{"lagos_mainland", "lagos_island", "abuja", "outside_coverage"}, zoneCodes)
		products.AssertNumberOfCalls(t, "Create", 8)
	})

	t.Run("Populated catalogue is left alone", func(t *testing.T) {
		products := new(MockProductStore)
		zones := new(MockZoneStore)

		zones.On("Upsert", ctx, mock.Anything).Return(nil)
		products.On("List", ctx, "", 1, 0).Return([]model.Product{{ID: 1}}, nil)

		summary, err := New(products, zones, nil, zerolog.Nop()).Run(ctx, files)

		require.NoError(t, err)
		assert.Equal(t, Summary{Zones: 4}, summary)
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Zone failure stops the run", func(t *testing.T) {
		products := new(MockProductStore)
		zones := new(MockZoneStore)

		zones.On("Upsert", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := New(products, zones, nil, zerolog.Nop()).Run(ctx, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "lagos_mainland")
		products.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Import failure", func(t *testing.T) {
		products := new(MockProductStore)
		zones := new(MockZoneStore)
		importer := new(MockImporter)

		zones.On("Upsert", ctx, mock.Anything).Return(nil)
		products.On("List", ctx, "", 1, 0).Return([]model.Product{{ID: 1}}, nil)
		importer.On("Import", ctx, files).Return(0, errors.New("missing column"))

		_, err := New(products, zones, importer, zerolog.Nop()).Run(ctx, files)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to import coupons")
	})
}

func TestDefaultCatalogue(t *testing.T) {
	products, err := DefaultCatalogue()
	require.NoError(t, err)

	counts := map[string]int{}
	for _, p := range products {
		counts[p.Category]++
		assert.Positive(t, p.Price, p.Name)
		assert.True(t, p.InStock, p.Name)
		assert.NotEmpty(t, p.Metadata, p.Name)
	}
	assert.Equal(t, 3, counts[model.CategoryCar])
	assert.Equal(t, 5, counts[model.CategoryGrocery])
}
