package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"article-reels/internal/config"
)

// AudioStore persists narration audio. SaveNarration returns a durable
// reference to store on the project, and Resolve turns a stored reference
// into a URL a client can play now.
type AudioStore interface {
	SaveNarration(ctx context.Context, projectID string, audio []byte) (string, error)
	Resolve(ctx context.Context, ref string) (string, error)
}

// MaxURLExpiry is the longest lifetime S3 accepts for a presigned URL.
const MaxURLExpiry = 7 * 24 * time.Hour

const refScheme = "minio://"

// New returns a MinIO-backed store when an endpoint is configured, and an
// inline data-URL store otherwise.
func New(cfg config.StorageConfig) (AudioStore, error) {
	if cfg.Endpoint == "" {
		log.Println("Object storage not configured, narration stored as data URLs")
		return DataURLStore{}, nil
	}
	return NewMinioStore(cfg)
}

// DataURLStore embeds audio directly in the returned URL.
type DataURLStore struct{}

func (DataURLStore) SaveNarration(_ context.Context, _ string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty narration audio")
	}
	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio), nil
}

func (DataURLStore) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// MinioStore uploads narration to an S3-compatible bucket. Projects keep a
// minio:// reference and a presigned GET URL is minted on every read.
type MinioStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 72 * time.Hour
	}
	if expiry > MaxURLExpiry {
		return nil, fmt.Errorf("storage url_expiry %s exceeds the %s presign limit", expiry, MaxURLExpiry)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	log.Printf("MinIO storage ready: %s/%s", cfg.Endpoint, cfg.Bucket)
	return &MinioStore{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// NarrationObjectName is the bucket key for a project's narration upload.
// Each generation gets a fresh key so links already handed out stay valid.
func NarrationObjectName(projectID string) string {
	return path.Join("projects", projectID, "voice", uuid.NewString()+".mp3")
}

func (s *MinioStore) SaveNarration(ctx context.Context, projectID string, audio []byte) (string, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		log.Printf("Bucket %s created", s.bucket)
	}

	objectName := NarrationObjectName(projectID)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(audio), int64(len(audio)), minio.PutObjectOptions{
		ContentType: "audio/mpeg",
	})
	if err != nil {
		return "", fmt.Errorf("upload narration %s: %w", objectName, err)
	}

	log.Printf("Narration uploaded: %s (%d bytes)", objectName, len(audio))
	return refScheme + s.bucket + "/" + objectName, nil
}

// Resolve presigns minio:// references. Anything else is returned unchanged.
func (s *MinioStore) Resolve(ctx context.Context, ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, refScheme)
	if !ok {
		return ref, nil
	}
	bucket, objectName, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || objectName == "" {
		return "", fmt.Errorf("malformed narration reference %q", ref)
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, objectName, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign narration %s: %w", objectName, err)
	}
	return u.String(), nil
}
