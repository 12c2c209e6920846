package coupon

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Columns recognised in a coupon definition file. The first row is the header.
var requiredColumns = []string{"code", "discount_type", "discount_value"}

// fileLoader implements Loader for reading gzipped coupon files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped CSV coupon file and returns its definitions.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*DefinitionSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon file")
		return nil, fmt.Errorf("failed to open coupon file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := readDefinitions(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read coupon file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("coupons_loaded", set.Size()).
		Msg("coupon file loaded successfully")

	return set, nil
}

// readDefinitions decompresses r and parses one coupon per CSV record.
func readDefinitions(ctx context.Context, r io.Reader, source string) (*DefinitionSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return NewDefinitionSet(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", source, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("coupon file %s is missing column %q", source, name)
		}
	}

	set := NewDefinitionSet(64)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading coupon file %s: %w", source, err)
		}

		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		c, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		if c.Code == "" {
			continue
		}
		set.Add(c)
	}

	return set, nil
}

func parseRecord(record []string, columns map[string]int) (model.Coupon, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	c := model.Coupon{
		Code:         normaliseCode(field("code")),
		Description:  field("description"),
		DiscountType: model.DiscountType(strings.ToLower(field("discount_type"))),
		IsActive:     true,
	}
	if c.Code == "" {
		return c, nil
	}

	if c.DiscountType != model.DiscountFixed && c.DiscountType != model.DiscountPercent {
		return c, fmt.Errorf("unsupported discount type %q", c.DiscountType)
	}

	value, err := strconv.ParseInt(field("discount_value"), 10, 64)
	if err != nil || value < 0 {
		return c, fmt.Errorf("invalid discount value %q", field("discount_value"))
	}
	c.DiscountValue = value

	if c.MinOrderAmount, err = optionalInt64(field("min_order_amount")); err != nil {
		return c, fmt.Errorf("invalid min_order_amount: %w", err)
	}
	if c.MaxDiscountAmount, err = optionalInt64(field("max_discount_amount")); err != nil {
		return c, fmt.Errorf("invalid max_discount_amount: %w", err)
	}
	if c.UsageLimit, err = optionalInt(field("usage_limit")); err != nil {
		return c, fmt.Errorf("invalid usage_limit: %w", err)
	}
	if c.PerCustomerLimit, err = optionalInt(field("per_customer_limit")); err != nil {
		return c, fmt.Errorf("invalid per_customer_limit: %w", err)
	}
	if c.StartsAt, err = optionalTime(field("starts_at")); err != nil {
		return c, fmt.Errorf("invalid starts_at: %w", err)
	}
	if c.EndsAt, err = optionalTime(field("ends_at")); err != nil {
		return c, fmt.Errorf("invalid ends_at: %w", err)
	}
	if raw := field("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c, fmt.Errorf("invalid is_active %q", raw)
		}
		c.IsActive = active
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func optionalInt64(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
