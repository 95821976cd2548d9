package supabase

import (
	"context"
	"errors"
	"io"
	"testing"

	storage "github.com/supabase-community/storage-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUpload struct {
	bucket string
	path   string
	body   string
	opts   storage.FileOptions
}

type fakeUploader struct {
	uploads []recordedUpload
	err     error
}

func (f *fakeUploader) UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error) {
	if f.err != nil {
		return storage.FileUploadResponse{}, f.err
	}
	body, _ := io.ReadAll(data)
	var opts storage.FileOptions
	if len(fileOptions) > 0 {
		opts = fileOptions[0]
	}
	f.uploads = append(f.uploads, recordedUpload{bucket: bucketID, path: relativePath, body: string(body), opts: opts})
	return storage.FileUploadResponse{}, nil
}

func TestStorageClient_PutObject(t *testing.T) {
	up := &fakeUploader{}
	s := &StorageClient{client: up, bucket: "christmas-experience-bucket", baseURL: "https://abc.supabase.co"}

	err := s.PutObject(context.Background(), "xmas1/index.html", []byte("<html>"), "text/html; charset=utf-8")
	require.NoError(t, err)

	require.Len(t, up.uploads, 1)
	got := up.uploads[0]
	assert.Equal(t, "christmas-experience-bucket", got.bucket)
	assert.Equal(t, "xmas1/index.html", got.path)
	assert.Equal(t, "<html>", got.body)
	require.NotNil(t, got.opts.ContentType)
	assert.Equal(t, "text/html; charset=utf-8", *got.opts.ContentType)
	require.NotNil(t, got.opts.Upsert)
	assert.True(t, *got.opts.Upsert)
}

func TestStorageClient_PutObjectError(t *testing.T) {
	s := &StorageClient{client: &fakeUploader{err: errors.New("403")}, bucket: "b"}

	err := s.PutObject(context.Background(), "xmas1/image1.jpeg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xmas1/image1.jpeg")
}

func TestStorageClient_PutObjectCancelled(t *testing.T) {
	up := &fakeUploader{}
	s := &StorageClient{client: up, bucket: "b"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.PutObject(ctx, "k", nil, "image/jpeg"), context.Canceled)
	assert.Empty(t, up.uploads)
}

func TestStorageClient_GetPublicURL(t *testing.T) {
	s := &StorageClient{bucket: "bucket", baseURL: "https://abc.supabase.co"}
	assert.Equal(t, "https://abc.supabase.co/storage/v1/object/public/bucket/xmas1/index.html", s.GetPublicURL("/xmas1/index.html"))
}

func TestNewStorageClient_RequiresClient(t *testing.T) {
	_, err := NewStorageClient(nil)
	assert.Error(t, err)
}
