package assetmodule

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/soundfoundry/releasedesk/internal/types"
)

// Bucket names. Each bucket is a directory under the configured data dir.
const (
	BucketAudio   = "audio"
	BucketArtwork = "artwork"
	BucketVideo   = "video"
)

var buckets = map[string]bool{
	BucketAudio:   true,
	BucketArtwork: true,
	BucketVideo:   true,
}

// Store is disk-backed object storage.
type Store struct {
	dataDir string
	baseURL string
}

// NewStore creates the store and its bucket directories.
func NewStore(dataDir, baseURL string) (*Store, error) {
	for bucket := range buckets {
		if err := os.MkdirAll(filepath.Join(dataDir, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create bucket directory %s: %w", bucket, err)
		}
	}
	return &Store{dataDir: dataDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes an object into a bucket and returns its path within the bucket.
func (s *Store) Save(bucket, path string, r io.Reader) (string, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", types.NewInternalError("failed to prepare storage path", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", types.NewInternalError("failed to create stored object", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", types.NewInternalError("failed to write stored object", err)
	}
	return path, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(bucket, path string) (*os.File, error) {
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if os.IsNotExist(err) {
		return nil, types.NewNotFoundError("object", path)
	}
	if err != nil {
		return nil, types.NewInternalError("failed to open stored object", err)
	}
	return f, nil
}

// PublicURL implements services.AssetService.
func (s *Store) PublicURL(bucket, path string) string {
	return s.baseURL + "/" + bucket + "/" + path
}

// resolve maps bucket+path to an absolute path, refusing bucket escapes.
func (s *Store) resolve(bucket, path string) (string, error) {
	if !buckets[bucket] {
		return "", types.NewValidationError(fmt.Sprintf("unknown bucket %q", bucket))
	}

	clean := filepath.Clean("/" + path)
	if clean == "/" || strings.Contains(path, "..") {
		return "", types.NewValidationError("invalid object path")
	}
	return filepath.Join(s.dataDir, bucket, clean), nil
}
