package aws

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPutter struct {
	mock.Mock
}

func (m *MockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    Location
		wantErr bool
	}{
		{"bucket and key", "s3://scores/exports/today.json", Location{"scores", "exports/today.json"}, false},
		{"bucket only", "s3://scores", Location{"scores", ""}, false},
		{"bucket with slash", "s3://scores/", Location{"scores", ""}, false},
		{"wrong scheme", "gs://scores/a.json", Location{}, true},
		{"no bucket", "s3:///a.json", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, IsS3URL("s3://scores/a.json"))
	assert.False(t, IsS3URL("scores.json"))
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("successful upload", func(t *testing.T) {
		putter := new(MockPutter)
		putter.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Bucket == "scores" && *in.Key == "a.json" &&
				*in.ContentType == "application/json" && in.Body != nil
		})).Return(&s3.PutObjectOutput{}, nil)

		err := NewUploader(putter).Upload(ctx, Location{"scores", "a.json"}, strings.NewReader("{}"), "application/json")
		require.NoError(t, err)
		putter.AssertExpectations(t)
	})

	t.Run("client failure", func(t *testing.T) {
		putter := new(MockPutter)
		putter.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("access denied"))

		err := NewUploader(putter).Upload(ctx, Location{"scores", "a.json"}, strings.NewReader("{}"), "application/json")
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("missing key", func(t *testing.T) {
		err := NewUploader(new(MockPutter)).Upload(ctx, Location{Bucket: "scores"}, strings.NewReader("{}"), "application/json")
		assert.Error(t, err)
	})
}
