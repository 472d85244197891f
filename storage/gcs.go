package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStore implements BlobStore on a Google Cloud Storage bucket. Object
// generations back the version tokens, so concurrent writers race on
// IfGenerationMatch and the loser gets ErrConflict.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// getGoogleClient initializes a Google Cloud Storage client.
// Prefer ADC (GOOGLE_APPLICATION_CREDENTIALS / service account). If explicit
// JSON is needed locally, set GCS_CREDENTIALS_JSON.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Read(ctx context.Context, path string) ([]byte, Version, error) {
	rdr, err := s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	defer rdr.Close()

	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, 0, err
	}
	return data, Version(rdr.Attrs.Generation), nil
}

func (s *GCSStore) Write(ctx context.Context, path string, data []byte, version Version) error {
	obj := s.client.Bucket(s.bucket).Object(path)
	if version == 0 {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	} else {
		obj = obj.If(storage.Conditions{GenerationMatch: int64(version)})
	}
	return s.writeObject(ctx, obj, path, data)
}

func (s *GCSStore) WriteNew(ctx context.Context, path string, data []byte) error {
	obj := s.client.Bucket(s.bucket).Object(path)
	return s.writeObject(ctx, obj, path, data)
}

func (s *GCSStore) writeObject(ctx context.Context, obj *storage.ObjectHandle, path string, data []byte) error {
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentTypeFor(path, data)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *GCSStore) ListDirs(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix:    withSlash(prefix),
		Delimiter: "/",
	})

	var dirs []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Prefix == "" {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, withSlash(prefix)), "/")
		if name != "" {
			dirs = append(dirs, name)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *GCSStore) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{
		Prefix:    withSlash(prefix),
		Delimiter: "/",
	})

	var files []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Name == "" {
			continue
		}
		name := strings.TrimPrefix(attrs.Name, withSlash(prefix))
		if name != "" {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func withSlash(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

func contentTypeFor(path string, data []byte) string {
	mimeType := http.DetectContentType(data)
	// xlsx is a zip container; DetectContentType cannot tell them apart.
	if mimeType == "application/zip" && strings.HasSuffix(path, ".xlsx") {
		mimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return mimeType
}
