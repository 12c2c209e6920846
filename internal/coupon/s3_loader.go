package coupon

import (
	"context"
	"fmt"
	"path"

	storecfg "storefront/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the subset of the S3 client the loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader implements Loader for reading gzipped coupon files from AWS S3.
type s3Loader struct {
	client objectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a new S3-based coupon loader using the default AWS credential chain.
func NewS3Loader(ctx context.Context, cfg storecfg.S3Config, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 coupon loader initialised")

	return newS3Loader(s3.NewFromConfig(awsCfg), cfg.Bucket, logger), nil
}

func newS3Loader(client objectGetter, bucket string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon file from S3 and returns its definitions.
// The key parameter should be the full S3 key (including any prefix).
func (l *s3Loader) Load(ctx context.Context, key string) (*DefinitionSet, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("loading coupon file from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	set, err := readDefinitions(ctx, result.Body, "s3://"+l.bucket+"/"+key)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("error reading coupon file from S3")
		return nil, err
	}

	l.logger.Info().
		Str("key", key).
		Int("coupons_loaded", set.Size()).
		Msg("coupon file loaded from S3")

	return set, nil
}

// fallbackLoader tries S3 first and reads the local file when S3 is disabled or fails.
type fallbackLoader struct {
	remote   Loader
	local    Loader
	s3Prefix string
	logger   zerolog.Logger
}

// NewFallbackLoader creates a loader that tries remote (when non-nil) before local.
// Remote keys are the prefix joined with the file's base name.
func NewFallbackLoader(remote, local Loader, s3Prefix string, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		remote:   remote,
		local:    local,
		s3Prefix: s3Prefix,
		logger:   logger.With().Str("component", "fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, filePath string) (*DefinitionSet, error) {
	if l.remote != nil {
		key := l.s3Prefix + path.Base(filePath)

		set, err := l.remote.Load(ctx, key)
		if err == nil {
			return set, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Str("local_fallback", filePath).
			Msg("failed to load from S3, falling back to local file system")
	}

	return l.local.Load(ctx, filePath)
}

// NewConfiguredLoader returns the local file loader, fronted by S3 when it is enabled.
// An S3 client that cannot be built leaves the local loader in place.
func NewConfiguredLoader(ctx context.Context, cfg storecfg.S3Config, logger zerolog.Logger) Loader {
	local := NewFileLoader(logger)
	if !cfg.Enabled {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
		return local
	}

	remote, err := NewS3Loader(ctx, cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
		return local
	}
	return NewFallbackLoader(remote, local, cfg.Prefix, logger)
}
