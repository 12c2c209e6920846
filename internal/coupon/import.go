package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Importer loads coupon definition files and upserts them by code.
type Importer struct {
	loader Loader
	sink   Sink
	logger zerolog.Logger
}

// NewImporter creates an importer writing to sink.
func NewImporter(loader Loader, sink Sink, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		sink:   sink,
		logger: logger.With().Str("component", "coupon-importer").Logger(),
	}
}

// Import loads all files concurrently and upserts the merged definitions.
// Files later in paths win when they define the same code. It returns the number of coupons written.
func (i *Importer) Import(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	type loadResult struct {
		set *DefinitionSet
		err error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup
	for idx, p := range paths {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			set, err := i.loader.Load(ctx, p)
			results[idx] = loadResult{set: set, err: err}
		}(idx, p)
	}
	wg.Wait()

	merged := NewDefinitionSet(64)
	for idx, r := range results {
		if r.err != nil {
			i.logger.Error().Err(r.err).Str("file", paths[idx]).Msg("failed to load coupon file")
			return 0, fmt.Errorf("failed to load coupon file %s: %w", paths[idx], r.err)
		}
		merged.Merge(r.set)
	}

	written := 0
	for _, c := range merged.All() {
		c := c
		if err := i.sink.Upsert(ctx, &c); err != nil {
			return written, fmt.Errorf("failed to import coupon %s: %w", c.Code, err)
		}
		written++
	}

	i.logger.Info().
		Int("files", len(paths)).
		Int("coupons", written).
		Msg("coupon definitions imported")

	return written, nil
}
