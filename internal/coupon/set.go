package coupon

import (
	"sort"
	"strings"

	"storefront/internal/model"
)

// DefinitionSet holds coupon definitions keyed by normalised code.
// A later definition for the same code replaces the earlier one.
type DefinitionSet struct {
	coupons map[string]model.Coupon
}

// NewDefinitionSet creates an empty set sized for capacity definitions.
func NewDefinitionSet(capacity int) *DefinitionSet {
	return &DefinitionSet{
		coupons: make(map[string]model.Coupon, capacity),
	}
}

func normaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Add stores c under its normalised code.
func (s *DefinitionSet) Add(c model.Coupon) {
	c.Code = normaliseCode(c.Code)
	s.coupons[c.Code] = c
}

// Get looks a definition up case-insensitively.
func (s *DefinitionSet) Get(code string) (model.Coupon, bool) {
	c, ok := s.coupons[normaliseCode(code)]
	return c, ok
}

// Size returns the number of distinct codes.
func (s *DefinitionSet) Size() int {
	return len(s.coupons)
}

// Merge copies every definition of other into s.
func (s *DefinitionSet) Merge(other *DefinitionSet) {
	for _, c := range other.coupons {
		s.coupons[c.Code] = c
	}
}

// All returns the definitions sorted by code.
func (s *DefinitionSet) All() []model.Coupon {
	out := make([]model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
