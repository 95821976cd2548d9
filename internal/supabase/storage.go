package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const cacheControl = "300"

// uploader is the slice of the storage-go client the store relies on.
type uploader interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
}

// StorageClient writes deployment objects into a Supabase Storage bucket.
type StorageClient struct {
	client  uploader
	bucket  string
	baseURL string
}

func NewStorageClient(c *Client) (*StorageClient, error) {
	if c == nil || c.Supabase == nil || c.Supabase.Storage == nil {
		return nil, errors.New("supabase client not configured")
	}
	return &StorageClient{
		client:  c.Supabase.Storage,
		bucket:  c.Config.SupabaseStorageBucket,
		baseURL: strings.TrimSuffix(c.Config.SupabaseURL, "/"),
	}, nil
}

// PutObject uploads data under key, overwriting any existing object.
func (s *StorageClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	upsert := true
	cache := cacheControl
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), storage.FileOptions{
		ContentType:  &contentType,
		Upsert:       &upsert,
		CacheControl: &cache,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *StorageClient) GetPublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, strings.TrimPrefix(key, "/"))
}
