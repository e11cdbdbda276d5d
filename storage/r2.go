package storage

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/spotlist/api-go/config"
	"github.com/spotlist/api-go/services"
)

const (
	MaxPhotos    = 10
	MaxPhotoSize = 10 * 1024 * 1024 // 10MB
)

var validPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// objectPutter is the part of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2PhotoStorage stores listing photos in a Cloudflare R2 bucket through the
// S3 API.
type R2PhotoStorage struct {
	client objectPutter
	cfg    config.R2Config
	now    func() time.Time
}

func NewR2PhotoStorage(cfg config.R2Config) *R2PhotoStorage {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})
	return &R2PhotoStorage{client: client, cfg: cfg, now: time.Now}
}

// Upload validates every photo before writing any of them, then puts them in
// order and returns their public URLs. If a put fails the photos already
// written are removed.
func (s *R2PhotoStorage) Upload(ctx context.Context, ownerID uint, photos []services.Photo) ([]string, error) {
	if len(photos) > MaxPhotos {
		return nil, services.NewValidationError("photos", fmt.Sprintf("maximum %d photos allowed per post", MaxPhotos))
	}
	for _, p := range photos {
		if err := validatePhoto(p); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(photos))
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		key := s.generateFileKey(ownerID, p.Filename)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.BucketName),
			Key:         aws.String(key),
			Body:        p.Body,
			ContentType: aws.String(p.ContentType),
		})
		if err != nil {
			s.cleanup(ctx, keys)
			return nil, &services.UploadError{File: p.Filename, Err: err}
		}
		keys = append(keys, key)
		urls = append(urls, fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicURL, "/"), key))
	}
	return urls, nil
}

// cleanup removes objects already stored for a failed upload. Failures are
// logged with the key so orphaned objects can be found.
func (s *R2PhotoStorage) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.BucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Printf("Failed to remove orphaned object %s from bucket %s: %v", key, s.cfg.BucketName, err)
		}
	}
}

func validatePhoto(p services.Photo) error {
	if !validPhotoTypes[strings.ToLower(p.ContentType)] {
		return services.NewValidationError("photos", fmt.Sprintf("invalid file type for %s", p.Filename))
	}
	if p.Size > MaxPhotoSize {
		return services.NewValidationError("photos", fmt.Sprintf("file size exceeds limit for %s", p.Filename))
	}
	if p.Body == nil {
		return services.NewValidationError("photos", fmt.Sprintf("empty upload for %s", p.Filename))
	}
	return nil
}

func (s *R2PhotoStorage) generateFileKey(ownerID uint, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("posts/%d/%d_%s%s", ownerID, s.now().Unix(), uuid.New().String(), ext)
}
