package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const uploadTimeout = 50 * time.Second

// GCSStore keeps objects in a Cloud Storage bucket. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or the metadata server.
type GCSStore struct {
	cl         *gcs.Client
	projectID  string
	bucketName string
}

func NewGCSStore(ctx context.Context, projectID, bucketName string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStore{
		cl:         client,
		projectID:  projectID,
		bucketName: bucketName,
	}, nil
}

func (c *GCSStore) Close() error {
	return c.cl.Close()
}

func (c *GCSStore) object(key string) (*gcs.ObjectHandle, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return c.cl.Bucket(c.bucketName).Object(cleaned), nil
}

func (c *GCSStore) Save(ctx context.Context, key string, r io.Reader) error {
	obj, err := c.object(key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	// Only create; an existing object with the same key is never replaced.
	wc := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

func (c *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.object(key)
	if err != nil {
		return nil, err
	}
	rc, err := obj.NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (c *GCSStore) Delete(ctx context.Context, key string) error {
	obj, err := c.object(key)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (c *GCSStore) DeletePrefix(ctx context.Context, prefix string) error {
	if _, err := cleanKey(prefix); err != nil {
		return err
	}

	bucket := c.cl.Bucket(c.bucketName)
	it := bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list %s: %w", prefix, err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("delete %s: %w", attrs.Name, err)
		}
	}
}
