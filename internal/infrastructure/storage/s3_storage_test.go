package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chitosepg/cameracapture/internal/domain/shared"
	"github.com/chitosepg/cameracapture/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.HeadBucketOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CreateBucketOutput)
	return out, args.Error(1)
}

func testS3Config() *config.StorageConfig {
	return &config.StorageConfig{
		Kind:         "s3",
		Bucket:       "captures",
		Prefix:       "/prints/",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "localhost:9000",
		UsePathStyle: true,
	}
}

func newMockedS3Storage(t *testing.T) (*S3Storage, *mockS3Client) {
	t.Helper()
	client := &mockS3Client{}
	s, err := NewS3Storage(testS3Config(), withClient(client), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, client
}

func TestNewS3Storage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3Storage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testS3Config()
		cfg.Bucket = ""
		_, err := NewS3Storage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := testS3Config()
		cfg.AccessKey = ""
		_, err := NewS3Storage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := testS3Config()
		cfg.SecretKey = ""
		_, err := NewS3Storage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config trims the prefix", func(t *testing.T) {
		s, err := NewS3Storage(testS3Config())
		require.NoError(t, err)
		assert.Equal(t, "captures", s.Bucket())
		assert.Equal(t, "s3://captures/prints/Saved.png", s.Location("Saved.png"))
	})
}

func TestS3Storage_Write(t *testing.T) {
	ctx := context.Background()
	s, client := newMockedS3Storage(t)

	var body []byte
	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "captures" &&
			*in.Key == "prints/Saved.png" &&
			*in.ContentType == "image/png" &&
			*in.ContentLength == 3
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		body, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	location, err := s.Write(ctx, "Saved.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "s3://captures/prints/Saved.png", location)
	assert.True(t, bytes.Equal([]byte("png"), body))
	client.AssertExpectations(t)
}

func TestS3Storage_WriteError(t *testing.T) {
	ctx := context.Background()
	s, client := newMockedS3Storage(t)
	client.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := s.Write(ctx, "Saved.png", []byte("png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestS3Storage_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("existing object", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadObject", ctx, mock.Anything).Return(&s3.HeadObjectOutput{}, nil).Once()

		exists, err := s.Exists(ctx, "Saved.png")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing object", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadObject", ctx, mock.Anything).Return(nil, &types.NotFound{}).Once()

		exists, err := s.Exists(ctx, "Saved.png")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadObject", ctx, mock.Anything).Return(nil, errors.New("forbidden")).Once()

		_, err := s.Exists(ctx, "Saved.png")
		assert.Error(t, err)
	})

	t.Run("invalid name never reaches S3", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		_, err := s.Exists(ctx, "../Saved.png")
		assert.True(t, errors.Is(err, ErrInvalidName))
		client.AssertNotCalled(t, "HeadObject", mock.Anything, mock.Anything)
	})
}

func TestS3Storage_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the body", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("GetObject", ctx, mock.Anything).
			Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("png"))}, nil).Once()

		rc, err := s.Open(ctx, "Saved.png")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "png", string(data))
	})

	t.Run("maps missing keys to not found", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("GetObject", ctx, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

		_, err := s.Open(ctx, "Saved.png")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestS3Storage_EnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("existing bucket", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadBucket", ctx, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()

		require.NoError(t, s.EnsureBucket(ctx))
		client.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadBucket", ctx, mock.Anything).Return(nil, &types.NoSuchBucket{}).Once()
		client.On("CreateBucket", ctx, mock.Anything).Return(&s3.CreateBucketOutput{}, nil).Once()

		require.NoError(t, s.EnsureBucket(ctx))
		client.AssertExpectations(t)
	})

	t.Run("race with another creator", func(t *testing.T) {
		s, client := newMockedS3Storage(t)
		client.On("HeadBucket", ctx, mock.Anything).Return(nil, &types.NotFound{}).Once()
		client.On("CreateBucket", ctx, mock.Anything).Return(nil, &types.BucketAlreadyOwnedByYou{}).Once()

		require.NoError(t, s.EnsureBucket(ctx))
	})
}

func TestS3Storage_DownloadURL(t *testing.T) {
	s, err := NewS3Storage(testS3Config())
	require.NoError(t, err)

	u, err := s.DownloadURL(context.Background(), "Saved.png", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "localhost:9000")
	assert.Contains(t, u, "captures")
	assert.Contains(t, u, "Saved.png")
}
