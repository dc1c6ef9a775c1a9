package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mediamatrixhub/internal/config"
)

// ErrInvalidPath is returned for keys that escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path; missing files are not an error
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary signed URL for private files
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	GetSize(ctx context.Context, path string) (int64, error)
}

// LocalPather is implemented by backends whose files live on this host.
type LocalPather interface {
	LocalPath(path string) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // custom S3-compatible endpoint
	UseSSL     bool
	PublicRead bool // Make files public by default
}

func FromConfig(c config.StorageConfig) Config {
	return Config{
		Type:       c.Type,
		BasePath:   c.BasePath,
		BaseURL:    c.BaseURL,
		Bucket:     c.Bucket,
		Region:     c.Region,
		AccessKey:  c.AccessKey,
		SecretKey:  c.SecretKey,
		Endpoint:   c.Endpoint,
		UseSSL:     c.UseSSL,
		PublicRead: c.PublicRead,
	}
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanKey normalises a storage key to a forward-slash relative path and
// rejects keys that climb out of the root.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "../") || strings.HasPrefix(key, "..") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// Localize returns a filesystem path for key. Remote backends are copied to
// a temporary file which cleanup removes.
func Localize(ctx context.Context, st Storage, key string) (string, func(), error) {
	if lp, ok := st.(LocalPather); ok {
		p, err := lp.LocalPath(key)
		if err != nil {
			return "", nil, err
		}
		if _, err := os.Stat(p); err != nil {
			return "", nil, fmt.Errorf("localize %s: %w", key, err)
		}
		return p, func() {}, nil
	}

	rc, err := st.Get(ctx, key)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "mmh-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

// SaveFile uploads the local file at src to key.
func SaveFile(ctx context.Context, st Storage, key, src, contentType string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	return st.Save(ctx, key, f, contentType)
}

// DeleteIfExists removes key when it is set and present.
func DeleteIfExists(ctx context.Context, st Storage, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	ok, err := st.Exists(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return true, st.Delete(ctx, key)
}
