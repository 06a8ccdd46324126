// Package storage keeps recipe images in an S3-compatible bucket.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("image storage not configured")

const keyPrefix = "recipe-images/"

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration. PublicBaseURL is the
// prefix under which bucket objects are reachable (CDN or public bucket
// endpoint); object keys are appended to it.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// ImageStore uploads and deletes recipe images. With an empty Config every
// operation returns ErrDisabled, so the server runs fine without a bucket.
type ImageStore struct {
	cfg    Config
	client s3Client
}

func NewImageStore(cfg Config) *ImageStore {
	s := &ImageStore{cfg: cfg}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether a bucket is configured.
func (s *ImageStore) Enabled() bool {
	return s.client != nil
}

// Upload stores the image under a fresh random key and returns its public
// URL. The original filename only contributes its extension.
func (s *ImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if s.client == nil {
		return "", ErrDisabled
	}

	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate image key: %w", err)
	}
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s%s-%d%s", keyPrefix, hex.EncodeToString(buf), time.Now().Unix(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}

	return strings.TrimSuffix(s.publicBase(), "/") + "/" + key, nil
}

// Delete removes the object behind a URL previously returned by Upload.
// URLs that do not point into the image prefix are ignored.
func (s *ImageStore) Delete(ctx context.Context, imageURL string) error {
	if s.client == nil {
		return ErrDisabled
	}

	i := strings.Index(imageURL, keyPrefix)
	if i < 0 {
		return nil
	}
	key := imageURL[i:]

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func (s *ImageStore) publicBase() string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}
	return strings.TrimSuffix(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
}
