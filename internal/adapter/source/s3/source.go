// Package s3 provides a track source backed by an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/source"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Config holds the bucket location and credentials.
type Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Lister is the subset of the S3 client used for listing.
type Lister interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// Downloader is the subset of the S3 download manager used for payloads.
type Downloader interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*s3manager.Downloader)) (int64, error)
}

// Source lists supported audio objects under a prefix.
// Objects are downloaded only when a track is loaded.
type Source struct {
	cfg        Config
	lister     Lister
	downloader Downloader
	logger     *slog.Logger
}

// New creates a source with an AWS session built from cfg.
// A custom endpoint switches to path-style addressing for S3-compatible stores.
func New(cfg Config, logger *slog.Logger) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, domain.NewValidationError("library.s3.bucket", cfg.Bucket, "bucket is required")
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return NewWithClients(cfg, s3.New(sess), s3manager.NewDownloader(sess), logger), nil
}

// NewWithClients creates a source over existing clients.
func NewWithClients(cfg Config, lister Lister, downloader Downloader, logger *slog.Logger) *Source {
	return &Source{
		cfg:        cfg,
		lister:     lister,
		downloader: downloader,
		logger:     logger.With(slog.String("adapter", "s3"), slog.String("bucket", cfg.Bucket)),
	}
}

// LoadLibrary lists every supported object under the prefix, ordered by key.
func (s *Source) LoadLibrary(ctx context.Context) ([]*domain.TrackHandle, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
	}
	if s.cfg.Prefix != "" {
		input.Prefix = aws.String(s.cfg.Prefix)
	}

	var keys []string
	err := s.lister.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if domain.IsSupportedFile(key) {
				keys = append(keys, key)
			}
		}
		return true
	})
	if err != nil {
		return nil, domain.NewServiceError("S3Source", "LoadLibrary", "list objects failed", err)
	}

	sort.Strings(keys)

	tracks := make([]*domain.TrackHandle, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		tracks = append(tracks, domain.NewTrackHandle(name, "s3://"+s.cfg.Bucket+"/"+key, s.materializer(name, key)))
	}

	s.logger.Info("library listed", slog.String("prefix", s.cfg.Prefix), slog.Int("tracks", len(tracks)))
	return tracks, nil
}

func (s *Source) materializer(name, key string) domain.MaterializeFunc {
	return func(ctx context.Context) (*domain.TrackData, error) {
		buf := aws.NewWriteAtBuffer(nil)
		_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, domain.NewServiceError("S3Source", "Materialize", "download "+key, err)
		}

		payload := buf.Bytes()
		s.logger.Debug("object downloaded", slog.String("key", key), slog.Int("bytes", len(payload)))

		meta := source.ReadMetadata(bytes.NewReader(payload))
		return source.Materialized(name, key, payload, meta), nil
	}
}

var _ ports.TrackSource = (*Source)(nil)
