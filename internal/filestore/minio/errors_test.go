package minio

import (
	"context"
	"net/http"
	"testing"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: errs.ErrKindTimeout},
		{name: "no such key", err: miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, want: errs.ErrKindNotFound},
		{name: "no such bucket", err: miniogo.ErrorResponse{Code: "NoSuchBucket"}, want: errs.ErrKindNotFound},
		{name: "access denied", err: miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, want: errs.ErrKindPermissionDenied},
		{name: "bad bucket name", err: miniogo.ErrorResponse{Code: "InvalidBucketName"}, want: errs.ErrKindInvalidInput},
		{name: "slow down", err: miniogo.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, want: errs.ErrKindTimeout},
		{name: "bare 404", err: miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, want: errs.ErrKindNotFound},
		{name: "network", err: assert.AnError, want: errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}

	assert.Nil(t, mapError(nil, "op"))
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestNew_RejectsOtherProviders(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{Provider: "gcs", Endpoint: "localhost:9000"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestToInfo(t *testing.T) {
	info := toInfo(miniogo.ObjectInfo{Key: "catalogs/", Size: 0})
	assert.True(t, info.IsDir)

	info = toInfo(miniogo.ObjectInfo{Key: "catalogs/a.json", Size: 12, ContentType: "application/json"})
	assert.False(t, info.IsDir)
	assert.Equal(t, int64(12), info.Size)
}

func TestAlreadyExists(t *testing.T) {
	assert.True(t, alreadyExists(miniogo.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}))
	assert.False(t, alreadyExists(miniogo.ErrorResponse{Code: "NoSuchBucket"}))
}
