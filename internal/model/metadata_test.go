package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	tests := []struct {
		name     string
		category string
		raw      map[string]string
		expected Metadata
		errMatch string
	}{
		{
			name:     "Car keys",
			category: CategoryCar,
			raw:      map[string]string{"mileage": "42000 km", "Fuel": " petrol ", "year": "2019"},
			expected: Metadata{"mileage": "42000 km", "fuel": "petrol", "year": "2019"},
		},
		{
			name:     "Grocery keys with blank value dropped",
			category: CategoryGrocery,
			raw:      map[string]string{"brand": "Golden Penny", "origin": "  "},
			expected: Metadata{"brand": "Golden Penny"},
		},
		{
			name:     "Empty input",
			category: CategoryGrocery,
			raw:      nil,
			expected: Metadata{},
		},
		{
			name:     "Grocery key on a car",
			category: CategoryCar,
			raw:      map[string]string{"weight": "1kg"},
			errMatch: `metadata key "weight" is not allowed for car`,
		},
		{
			name:     "Car key on a grocery",
			category: CategoryGrocery,
			raw:      map[string]string{"transmission": "manual"},
			errMatch: "allowed: brand, origin, unit, weight",
		},
		{
			name:     "Unknown category",
			category: "furniture",
			raw:      map[string]string{"color": "red"},
			errMatch: `unknown category "furniture"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := NewMetadata(tt.category, tt.raw)
			if tt.errMatch != "" {
				require.ErrorIs(t, err, ErrInvalidMetadata)
				assert.Contains(t, err.Error(), tt.errMatch)
				assert.Nil(t, md)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, md)
		})
	}
}

func TestMetadata_Sanitize(t *testing.T) {
	stored := Metadata{"mileage": "10 km", "brand": "Toyota", "weight": "2t", "color": "blue"}

	tests := []struct {
		category string
		expected Metadata
	}{
		{category: CategoryCar, expected: Metadata{"mileage": "10 km", "color": "blue"}},
		{category: CategoryGrocery, expected: Metadata{"brand": "Toyota", "weight": "2t"}},
		{category: "furniture", expected: Metadata{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.expected, stored.Sanitize(tt.category))
		})
	}
	assert.Len(t, stored, 4)
}

func TestAllowedMetadataKeys(t *testing.T) {
	assert.Equal(t, []string{"color", "fuel", "mileage", "transmission", "year"}, AllowedMetadataKeys(CategoryCar))
	assert.Equal(t, []string{"brand", "origin", "unit", "weight"}, AllowedMetadataKeys(CategoryGrocery))
	assert.Empty(t, AllowedMetadataKeys("furniture"))
}
