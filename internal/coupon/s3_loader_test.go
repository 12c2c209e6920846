package coupon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	storecfg "storefront/internal/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, filePath string) (*DefinitionSet, error)
}

func (m *mockLoader) Load(ctx context.Context, filePath string) (*DefinitionSet, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, filePath)
	}
	return nil, errors.New("not implemented")
}

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Bucket+"/"+*in.Key)
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func setWith(codes ...string) *DefinitionSet {
	set := NewDefinitionSet(len(codes))
	for _, c := range codes {
		set.Add(couponFixture(c))
	}
	return set
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"coupons/base.gz": gzipLines(t, []string{testHeader, "S3CODE,fixed,750"}),
	}}
	loader := newS3Loader(client, "vicbest-coupons", zerolog.Nop())

	set, err := loader.Load(context.Background(), "coupons/base.gz")

	require.NoError(t, err)
	c, ok := set.Get("S3CODE")
	require.True(t, ok)
	assert.Equal(t, int64(750), c.DiscountValue)
	assert.Equal(t, []string{"vicbest-coupons/coupons/base.gz"}, client.keys)

	_, err = loader.Load(context.Background(), "coupons/missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get object from S3")
}

func TestFallbackLoader_S3Success(t *testing.T) {
	remote := &mockLoader{
		loadFunc: func(ctx context.Context, key string) (*DefinitionSet, error) {
			assert.Equal(t, "coupons/seed.gz", key, "S3 key should be prefix plus base name")
			return setWith("S3CODE123"), nil
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) (*DefinitionSet, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	fallback := NewFallbackLoader(remote, local, "coupons/", zerolog.Nop())

	set, err := fallback.Load(context.Background(), "data/coupons/seed.gz")
	require.NoError(t, err)
	_, ok := set.Get("S3CODE123")
	assert.True(t, ok)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	remote := &mockLoader{
		loadFunc: func(ctx context.Context, key string) (*DefinitionSet, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) (*DefinitionSet, error) {
			assert.Equal(t, "data/coupons/seed.gz", filePath)
			return setWith("LOCALCODE1"), nil
		},
	}

	fallback := NewFallbackLoader(remote, local, "coupons/", zerolog.Nop())

	set, err := fallback.Load(context.Background(), "data/coupons/seed.gz")
	require.NoError(t, err)
	_, ok := set.Get("LOCALCODE1")
	assert.True(t, ok)
}

func TestFallbackLoader_NoRemote(t *testing.T) {
	local := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) (*DefinitionSet, error) {
			return setWith("LOCAL"), nil
		},
	}

	fallback := NewFallbackLoader(nil, local, "coupons/", zerolog.Nop())

	set, err := fallback.Load(context.Background(), "seed.gz")
	require.NoError(t, err)
	assert.Equal(t, 1, set.Size())
}

func TestFallbackLoader_BothFail(t *testing.T) {
	remote := &mockLoader{}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, filePath string) (*DefinitionSet, error) {
			return nil, errors.New("local file not found")
		},
	}

	fallback := NewFallbackLoader(remote, local, "coupons/", zerolog.Nop())

	set, err := fallback.Load(context.Background(), "seed.gz")
	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), "local file not found")
}

func TestNewConfiguredLoader_S3Disabled(t *testing.T) {
	loader := NewConfiguredLoader(context.Background(), storecfg.S3Config{Enabled: false}, zerolog.Nop())

	_, ok := loader.(*fileLoader)
	assert.True(t, ok)
}
