package model

import (
	"fmt"
	"sort"
	"strings"
)

// Metadata holds per-category product attributes.
// Only keys listed in metadataKeys for the product's category are kept.
type Metadata map[string]string

var metadataKeys = map[string]map[string]struct{}{
	CategoryCar: {
		"mileage":      {},
		"fuel":         {},
		"transmission": {},
		"year":         {},
		"color":        {},
	},
	CategoryGrocery: {
		"unit":   {},
		"weight": {},
		"brand":  {},
		"origin": {},
	},
}

// AllowedMetadataKeys returns the sorted attribute keys a category accepts.
func AllowedMetadataKeys(category string) []string {
	allowed := metadataKeys[category]
	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewMetadata validates raw attributes against the category's key set.
func NewMetadata(category string, raw map[string]string) (Metadata, error) {
	allowed, ok := metadataKeys[category]
	if !ok {
		return nil, ErrInvalidMetadata.WithMessage(fmt.Sprintf("unknown category %q", category))
	}

	md := make(Metadata, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, ok := allowed[key]; !ok {
			return nil, ErrInvalidMetadata.WithMessage(
				fmt.Sprintf("metadata key %q is not allowed for %s (allowed: %s)",
					k, category, strings.Join(AllowedMetadataKeys(category), ", ")))
		}
		value := strings.TrimSpace(v)
		if value == "" {
			continue
		}
		md[key] = value
	}
	return md, nil
}

// Sanitize drops keys the category does not allow. Used when reading stored rows.
func (m Metadata) Sanitize(category string) Metadata {
	allowed := metadataKeys[category]
	out := make(Metadata, len(m))
	for k, v := range m {
		if _, ok := allowed[k]; ok {
			out[k] = v
		}
	}
	return out
}
