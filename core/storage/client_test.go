package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"map-atlas/core/storage"
	"map-atlas/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"PlainEndpoint", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "atlas"}},
		{"HTTPScheme", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTPSScheme", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true, Region: "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestConfig(t *testing.T) {
	assert.Equal(t, "s3.amazonaws.com", storage.Config{Endpoint: "https://s3.amazonaws.com/"}.Host())
	assert.Equal(t, "localhost:9000", storage.Config{Endpoint: "http://localhost:9000"}.Host())
	assert.Equal(t, storage.DefaultTimeout, storage.Config{}.Timeout())
	assert.Equal(t, 5*time.Second, storage.Config{TimeoutSeconds: 5}.Timeout())
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "atlas").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "atlas", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "atlas").Return(false, nil)
		client.On("MakeBucket", ctx, "atlas", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "atlas", "eu-west-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "atlas").Return(false, errors.New("denied"))

		err := storage.EnsureBucket(ctx, client, "atlas", "")
		assert.ErrorContains(t, err, "denied")
	})
}

func TestMocks(t *testing.T) {
	var _ storage.Client = (*mocks.Client)(nil)

	var keys []string
	for info := range mocks.Listing(minio.ObjectInfo{Key: "a"}, minio.ObjectInfo{Key: "b"}) {
		keys = append(keys, info.Key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	n := 0
	for range mocks.Failures() {
		n++
	}
	assert.Zero(t, n)
}
