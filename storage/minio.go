package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"soundwave/config"
	"soundwave/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetStore keeps song audio files and cover images in a MinIO bucket.
type AssetStore struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
}

// NewAssetStore creates the client without touching the network.
func NewAssetStore(cfg *config.Config) (*AssetStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	base := cfg.AssetBaseURL
	if base == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}
	return &AssetStore{
		client:  client,
		bucket:  cfg.MinioBucket,
		region:  cfg.MinioRegion,
		baseURL: strings.TrimRight(base, "/"),
	}, nil
}

// ConnectAssetStore creates the store and makes sure the bucket exists.
func ConnectAssetStore(ctx context.Context, cfg *config.Config) (*AssetStore, error) {
	s, err := NewAssetStore(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Connecting to MinIO",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 检查存储桶是否存在
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
		logger.Info("Bucket created", logger.String("bucket", s.bucket))
	}
	return s, nil
}

// Bucket returns the bucket name.
func (s *AssetStore) Bucket() string {
	return s.bucket
}

// PublicURL returns the URL an object is served from.
func (s *AssetStore) PublicURL(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// Upload stores r under key and returns its public URL.
func (s *AssetStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	logger.Info("Asset uploaded",
		logger.String("key", key),
		logger.Int64("size", info.Size),
		logger.String("contentType", contentType))
	return s.PublicURL(key), nil
}

// UploadFile uploads a local file under key.
func (s *AssetStore) UploadFile(ctx context.Context, key, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return s.Upload(ctx, key, f, st.Size(), ContentTypeFor(filePath))
}

// ObjectKey builds the object key for a song asset, e.g. audio/<songKey>.mp3.
func ObjectKey(kind, songKey, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(kind, songKey+ext)
}
