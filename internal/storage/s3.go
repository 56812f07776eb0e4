// Package storage uploads generated audio replies to S3 and hands out
// presigned links to them.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/harunnryd/mimir/internal/config"
	mimirErrors "github.com/harunnryd/mimir/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const audioContentType = "audio/mpeg"

// AudioStore writes mp3 objects to a single bucket.
type AudioStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
}

// NewAudioStore loads the default AWS credential chain. An empty bucket is
// reported as ErrNotConfigured so callers can run without audio.
func NewAudioStore(ctx context.Context, cfg config.StorageConfig, optFns ...func(*awsconfig.LoadOptions) error) (*AudioStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, mimirErrors.NotConfigured("storage.bucket is empty")
	}

	expiry, err := config.DurationOrDefault(cfg.PresignExpiry, config.DefaultStoragePresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("storage.presign_expiry: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = config.DefaultStorageRegion
	}
	opts := append([]func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}, optFns...)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &AudioStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		expiry:  expiry,
	}, nil
}

// NewAudioObjectName returns a random object name for an mp3 reply.
func NewAudioObjectName() string {
	return uuid.NewString() + ".mp3"
}

func (s *AudioStore) key(name string) string {
	return s.prefix + name
}

// Upload stores audio under name, tagged with the chat it belongs to. Failures
// are logged and reported as false.
func (s *AudioStore) Upload(ctx context.Context, name string, audio []byte, chatID string, ts time.Time) bool {
	if len(audio) == 0 {
		slog.Error("Refusing to upload empty audio", "object", name)
		return false
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String(audioContentType),
		Metadata: map[string]string{
			"chat_id":   chatID,
			"timestamp": strconv.FormatInt(ts.Unix(), 10),
		},
	})
	if err != nil {
		logUploadError("Audio upload failed", name, err)
		return false
	}

	slog.Info("Audio uploaded", "bucket", s.bucket, "object", s.key(name))
	return true
}

// Presign returns a time-limited GET link for name.
func (s *AudioStore) Presign(ctx context.Context, name string) (string, bool) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		logUploadError("Presigning audio link failed", name, err)
		return "", false
	}
	return req.URL, true
}

func logUploadError(msg, name string, err error) {
	if isCredentialError(err) {
		slog.Error("AWS credentials not available", "object", name, "error", err)
		return
	}
	slog.Error(msg, "object", name, "error", err)
}

func isCredentialError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "retrieve credentials") || strings.Contains(s, "no valid providers") || strings.Contains(s, "anonymous credentials")
}
