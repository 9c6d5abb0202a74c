package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/config"
)

// ErrDisabled is returned by every VideoStore method when no S3 endpoint is configured.
var ErrDisabled = errors.New("video storage is not configured")

// ErrUnsupportedType is returned for uploads that are not video/*.
var ErrUnsupportedType = errors.New("content type must be video/*")

type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// VideoStore keeps campaign videos in an S3-compatible bucket. A nil
// *VideoStore is valid and reports ErrDisabled.
type VideoStore struct {
	objects       ObjectAPI
	presigner     Presigner
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
	logger        zerolog.Logger
}

// NewVideoStore returns nil when storage is not configured.
func NewVideoStore(cfg *config.Config, logger zerolog.Logger) *VideoStore {
	if !cfg.StorageEnabled() {
		return nil
	}
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(cfg.S3Endpoint),
		Region:       cfg.S3Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		UsePathStyle: true,
	})
	return newVideoStore(client, s3.NewPresignClient(client), cfg.S3Bucket, cfg.S3PublicBaseURL, logger)
}

func newVideoStore(objects ObjectAPI, presigner Presigner, bucket, publicBaseURL string, logger zerolog.Logger) *VideoStore {
	return &VideoStore{
		objects:       objects,
		presigner:     presigner,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		presignTTL:    time.Hour,
		logger:        logger.With().Str("component", "video-store").Logger(),
	}
}

func (s *VideoStore) Enabled() bool {
	return s != nil
}

// ObjectKey returns a fresh key for a campaign video: campaigns/{id}/{uuid}.{ext}.
func ObjectKey(campaignID, contentType string) (string, error) {
	ext, err := extensionFor(contentType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("campaigns/%s/%s.%s", campaignID, uuid.NewString(), ext), nil
}

var videoExtensions = map[string]string{
	"video/mp4":        "mp4",
	"video/webm":       "webm",
	"video/quicktime":  "mov",
	"video/ogg":        "ogv",
	"video/x-matroska": "mkv",
}

func extensionFor(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "video/") {
		return "", ErrUnsupportedType
	}
	if ext, ok := videoExtensions[mediaType]; ok {
		return ext, nil
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], "."), nil
	}
	return "bin", nil
}

// PutVideo uploads body under key. body must be seekable when the endpoint is plain HTTP.
func (s *VideoStore) PutVideo(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s == nil {
		return ErrDisabled
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.objects.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put video %s: %w", key, err)
	}
	s.logger.Info().Str("key", key).Int64("size", size).Msg("uploaded video")
	return nil
}

func (s *VideoStore) DeleteVideo(ctx context.Context, key string) error {
	if s == nil {
		return ErrDisabled
	}
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete video %s: %w", key, err)
	}
	return nil
}

// VideoURL returns the public URL of key, or a presigned GET URL when no
// public base URL is configured.
func (s *VideoStore) VideoURL(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", ErrDisabled
	}
	if s.publicBaseURL != "" {
		u, err := url.JoinPath(s.publicBaseURL, key)
		if err != nil {
			return "", fmt.Errorf("build video url: %w", err)
		}
		return u, nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign video %s: %w", key, err)
	}
	return req.URL, nil
}
