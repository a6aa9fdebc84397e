package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>invoices/missing.html</Key><BucketName>invoices</BucketName><RequestId>1</RequestId></Error>`

func newFakeMinioStore(t *testing.T, handler http.HandlerFunc) *MinioStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &MinioStore{client: client, bucket: "invoices"}
}

func TestMinioStore_Get_MissingKey(t *testing.T) {
	s := newFakeMinioStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(noSuchKeyBody))
	})

	rc, err := s.Get(context.Background(), "invoices/missing.html")

	assert.Nil(t, rc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObjectError(t *testing.T) {
	err := objectError("invoices/a.html", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})
	assert.ErrorIs(t, err, ErrNotFound)

	other := errors.New("connection reset")
	err = objectError("invoices/a.html", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrNotFound)
}
